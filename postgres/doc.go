// Package postgres implements domain.Store on PostgreSQL with pgx.
//
// Schema changes ship as embedded SQL files applied in name order by [Migrate]; applied
// versions are recorded in schema_migrations.
//
// # What this package must NOT do
//
//   - Retry failed statements.
//   - Import goSaaS, session, or action.
package postgres
