// internal/config/database.go
package config

import (
	"fmt"
)

// DSN builds the postgres connection string. The application name shows up
// in pg_stat_activity, which helps when several services share a cluster.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=fleet-monkeys-approvals",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// RedactedDSN is safe to log.
func (d *DatabaseConfig) RedactedDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Database, d.SSLMode,
	)
}
