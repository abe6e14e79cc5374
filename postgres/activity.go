package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MrEthical07/goSaaS/domain"
)

func (s *Store) AppendActivity(ctx context.Context, e *domain.ActivityLog) error {
	ip := e.IPAddress
	if len(ip) > domain.MaxIPAddressLength {
		ip = ip[:domain.MaxIPAddressLength]
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO activity_logs (team_id, user_id, action, ip_address)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, timestamp
	`, e.TeamID, e.UserID, string(e.Action), ip).Scan(&e.ID, &e.Timestamp)
	return mapError(err, "append activity")
}

func (s *Store) ActivityForUser(ctx context.Context, userID int64, limit int) ([]domain.ActivityLog, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, team_id, user_id, action, timestamp, COALESCE(ip_address, '')
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("activity for user %d", userID))
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ActivityLog, error) {
		var (
			e      domain.ActivityLog
			action string
		)
		err := row.Scan(&e.ID, &e.TeamID, &e.UserID, &action, &e.Timestamp, &e.IPAddress)
		e.Action = domain.ActivityType(action)
		return e, err
	})
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("activity for user %d", userID))
	}
	return logs, nil
}
