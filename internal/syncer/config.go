package syncer

import "time"

type Config struct {
	DBDSN           string        `envconfig:"DASH_DB_DSN" required:"true"`
	SourceDSN       string        `envconfig:"DASH_SOURCE_DSN" required:"true"`
	RedisURL        string        `envconfig:"DASH_REDIS_URL" default:""`
	MetricsAddr     string        `envconfig:"DASH_METRICS_ADDR" default:"0.0.0.0:9091"`
	LogLevel        string        `envconfig:"DASH_LOG_LEVEL" default:"info"`
	SyncInterval    time.Duration `envconfig:"DASH_SYNC_INTERVAL" default:"10m"`
	DispatchWorkers int           `envconfig:"DASH_DISPATCH_WORKERS" default:"4"`
	ShutdownTimeout time.Duration `envconfig:"DASH_SHUTDOWN_TIMEOUT" default:"30s"`
}
