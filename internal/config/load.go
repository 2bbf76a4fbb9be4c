package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"benchdash/internal/benchmark"
	"benchdash/internal/source"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load initializes the configuration from file and environment variables.
// A missing config.yaml in the working directory is not an error; an
// explicitly named file that cannot be read is.
func Load(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("BENCHDASH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Fall back to the standard InfluxDB variables.
	for key, env := range map[string]string{
		"source.influx.url":    "INFLUXDB_URL",
		"source.influx.token":  "INFLUXDB_TOKEN",
		"source.influx.org":    "INFLUXDB_ORG",
		"source.influx.bucket": "INFLUXDB_BUCKET",
	} {
		if v := os.Getenv(env); v != "" {
			viper.SetDefault(key, v)
		}
	}

	viper.SetDefault("source.type", source.TypeGraphQL)
	viper.SetDefault("source.endpoint", source.DefaultGraphQLEndpoint)
	viper.SetDefault("source.timeout", "30s")
	viper.SetDefault("source.influx.range", "0")
	viper.SetDefault("source.fake.steps", 50)
	viper.SetDefault("source.fake.names", []string{"bench_fake"})
	viper.SetDefault("default_branch", benchmark.DefaultBranch)
	viper.SetDefault("band", "stddev")
	viper.SetDefault("server.addr", "127.0.0.1:8081")
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
		return nil
	}

	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return nil
}

// Source returns the configured source settings.
func Source() source.Config {
	return source.Config{
		Type:          viper.GetString("source.type"),
		Endpoint:      viper.GetString("source.endpoint"),
		DSN:           viper.GetString("source.dsn"),
		Path:          viper.GetString("source.path"),
		Timeout:       duration("source.timeout"),
		DefaultBranch: viper.GetString("default_branch"),
		Influx: source.InfluxConfig{
			URL:    viper.GetString("source.influx.url"),
			Token:  viper.GetString("source.influx.token"),
			Org:    viper.GetString("source.influx.org"),
			Bucket: viper.GetString("source.influx.bucket"),
			Range:  viper.GetString("source.influx.range"),
		},
		Fake: source.FakeConfig{
			Steps:  viper.GetInt("source.fake.steps"),
			Names:  viper.GetStringSlice("source.fake.names"),
			Branch: viper.GetString("source.fake.branch"),
			Seed:   viper.GetUint64("source.fake.seed"),
		},
	}
}

// IndexOptions returns the options every index is built with.
func IndexOptions() []benchmark.IndexOption {
	opts := []benchmark.IndexOption{benchmark.WithDefaultBranch(viper.GetString("default_branch"))}
	if strings.EqualFold(viper.GetString("band"), "ci") {
		opts = append(opts, benchmark.WithBandMode(benchmark.BandCI))
	}
	return opts
}

// duration reads a key given either as a duration string or as seconds.
func duration(key string) time.Duration {
	switch v := viper.Get(key).(type) {
	case time.Duration:
		return v
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return time.Duration(viper.GetInt(key)) * time.Second
}
