// Command saasd runs the SaaS shell: the HTTP server, schema migrations and a seed.
//
// Configuration comes from the environment, optionally loaded from a .env file:
//
//	AUTH_SECRET            session signing key (required)
//	POSTGRES_URL           database URL (serve without --memory, migrate, seed)
//	REDIS_URL              optional; shares rate limit counters between instances
//	STRIPE_SECRET_KEY      optional; enables billing
//	STRIPE_WEBHOOK_SECRET  webhook signing secret
//	BASE_URL               public origin for billing redirects
//	HTTP_ADDR              listen address, default :3000
//	LOG_LEVEL, LOG_PRETTY  zerolog level and console output
//	PRODUCTION             enables production config checks
package main

import (
	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}
