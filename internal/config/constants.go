package config

import "time"

const (
	SessionBackendPostgres = "postgres"
	SessionBackendRedis    = "redis"
	SessionBackendMemory   = "memory"

	// Rate limit window
	RateLimitWindow = time.Minute

	// Timeout for out-of-band sends (log chat, admin notifications)
	NotifyTimeout = 10 * time.Second

	// Graceful shutdown of the ops HTTP server
	ShutdownTimeout = 5 * time.Second

	// Database pool sizing
	PoolMaxConns = 10
	PoolMinConns = 2
)
