package db

import "time"

const (
	defaultMaxConns          = 10
	defaultMinConns          = 2
	defaultMaxConnIdleTime   = 5 * time.Minute
	defaultMaxConnLifetime   = time.Hour
	defaultHealthCheckPeriod = time.Minute
	defaultQueryTimeout      = 5 * time.Second

	maxConnectionRetries = 5

	// ConnectionRetrySleep is the delay between connection attempts.
	ConnectionRetrySleep = 2 * time.Second
)
