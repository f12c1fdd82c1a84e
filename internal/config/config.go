package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is shared by every weatherdesk command. Fields are bound to flags
// and environment variables by kong.
type Config struct {
	APIURL      string        `name:"api-url" env:"WEATHERDESK_API_URL" default:"http://localhost:8000" help:"Weather backend base URL." validate:"required,url"`
	Timeout     time.Duration `name:"timeout" env:"WEATHERDESK_TIMEOUT" default:"30s" help:"Per-request timeout." validate:"gt=0"`
	LogLevel    string        `name:"log-level" env:"LOG_LEVEL" default:"info" help:"Log level (debug, info, warn, error)." validate:"required"`
	LogFormat   string        `name:"log-format" env:"LOG_FORMAT" default:"text" enum:"text,json" help:"Log output format." validate:"oneof=text json"`
	Breaker     bool          `name:"breaker" env:"WEATHERDESK_BREAKER" help:"Stop calling the backend after repeated connection failures."`
	MetricsAddr string        `name:"metrics-addr" env:"WEATHERDESK_METRICS_ADDR" help:"Serve Prometheus metrics on this address during interactive sessions." validate:"omitempty,hostname_port"`
}

// Validate checks field formats and the log level.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s %q (%s)", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
