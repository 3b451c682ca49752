// Copyright 2025 The Vex Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the server configuration from environment
// variables.
//
// A .env file in the working directory is loaded first when present;
// real environment variables win over .env entries. Parsing is done by
// caarlos0/env against the struct tags below, so the full list of
// recognized variables is readable from the Config type itself.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the vexd server configuration.
type Config struct {
	// HTTP listener.
	Host string `env:"VEX_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"VEX_PORT" envDefault:"8080"`

	// Guest handler invocation.
	InvokeTimeout time.Duration `env:"VEX_INVOKE_TIMEOUT" envDefault:"30s"`
	QueueSize     int           `env:"VEX_QUEUE_SIZE" envDefault:"64"`

	// Template rendering. Directories are tried in order.
	TemplateDirs []string `env:"VEX_TEMPLATE_DIRS" envSeparator:":" envDefault:"templates"`

	// Logging.
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Telemetry. The OTEL_* names follow the OpenTelemetry environment
	// variable conventions so standard collector setups work unchanged.
	OtelEnabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName     string `env:"OTEL_SERVICE_NAME" envDefault:"vex"`
	ServiceVersion  string `env:"OTEL_SERVICE_VERSION" envDefault:"dev"`
	OtlpEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	MetricsProvider string `env:"VEX_METRICS_PROVIDER" envDefault:"prometheus"`
	TracingProvider string `env:"VEX_TRACING_PROVIDER" envDefault:"noop"`
	MetricsAddr     string `env:"VEX_METRICS_ADDR" envDefault:":9090"`
}

// Addr returns the host:port listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads .env (if present) and the environment into a Config.
func Load() (Config, error) {
	// A missing .env file is the normal production case, not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// MustLoad loads the configuration and panics on failure. For use at
// startup where a bad environment should abort immediately.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("config.MustLoad: %v", err))
	}
	return cfg
}
