package config

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"

	"benchdash/internal/source"

	"github.com/spf13/viper"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	typ := strings.ToLower(viper.GetString("source.type"))
	if typ != "" && !slices.Contains(source.Types, typ) {
		errors = append(errors, fmt.Sprintf("source.type must be one of %s, got: %s", strings.Join(source.Types, ", "), typ))
	}

	required := map[string][]string{
		source.TypePostgres: {"source.dsn"},
		source.TypeSQLite:   {"source.path"},
		source.TypeFile:     {"source.path"},
		source.TypeGoBench:  {"source.path"},
		source.TypeInfluxDB: {"source.influx.url", "source.influx.bucket"},
	}
	for _, key := range required[typ] {
		if viper.GetString(key) == "" {
			errors = append(errors, fmt.Sprintf("%s is required for source type %s", key, typ))
		}
	}

	if viper.IsSet("source.timeout") && duration("source.timeout") <= 0 {
		errors = append(errors, fmt.Sprintf("source.timeout must be positive, got: %v", viper.Get("source.timeout")))
	}

	if viper.IsSet("source.fake.steps") {
		if steps := viper.GetInt("source.fake.steps"); steps <= 0 {
			errors = append(errors, fmt.Sprintf("source.fake.steps must be positive, got: %d", steps))
		}
	}

	if band := strings.ToLower(viper.GetString("band")); band != "" && band != "stddev" && band != "ci" {
		errors = append(errors, fmt.Sprintf("band must be stddev or ci, got: %s", band))
	}

	if viper.IsSet("server.addr") {
		addr := viper.GetString("server.addr")
		_, port, err := net.SplitHostPort(addr)
		if err != nil {
			errors = append(errors, fmt.Sprintf("server.addr must be host:port, got: %s", addr))
		} else if p, err := strconv.Atoi(port); err != nil || p < 0 || p > 65535 {
			errors = append(errors, fmt.Sprintf("server.addr port must be between 0 and 65535, got: %s", port))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}
