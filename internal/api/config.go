package api

import "time"

type Config struct {
	HTTPAddr        string        `envconfig:"DASH_HTTP_ADDR" default:"0.0.0.0:8080"`
	DBDSN           string        `envconfig:"DASH_DB_DSN" required:"true"`
	MetricsAddr     string        `envconfig:"DASH_METRICS_ADDR" default:"0.0.0.0:9090"`
	LogLevel        string        `envconfig:"DASH_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"DASH_SHUTDOWN_TIMEOUT" default:"30s"`
}
