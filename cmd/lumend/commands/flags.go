package commands

import (
	"github.com/concave-dev/lumen/cmd/lumend/config"
	configDefaults "github.com/concave-dev/lumen/internal/config"
	"github.com/spf13/cobra"
)

// flagFields maps flag names to the config fields they set
var flagFields = map[string]config.ConfigField{
	"api":             config.APIAddrField,
	"name":            config.NameField,
	"backend":         config.BackendField,
	"backend-url":     config.BackendURLField,
	"model":           config.ModelField,
	"seed":            config.SeedField,
	"max-batch-size":  config.MaxBatchSizeField,
	"inference-steps": config.InferenceStepsField,
	"backend-timeout": config.BackendTimeoutField,
	"redis":           config.RedisAddrField,
	"redis-password":  config.RedisPasswordField,
	"redis-db":        config.RedisDBField,
	"cache-ttl":       config.CacheTTLField,
	"rate-limit":      config.RateLimitField,
	"rate-burst":      config.RateBurstField,
	"log-level":       config.LogLevelField,
	"log-file":        config.LogFileField,
	"log-max-size":    config.LogMaxSizeField,
	"log-max-backups": config.LogMaxBackupsField,
}

// SetupFlags configures all command line flags for the daemon
func SetupFlags(cmd *cobra.Command) {
	// API flags
	cmd.Flags().StringVar(&config.Global.APIAddr, "api", config.DefaultAPI,
		"Address and port for the HTTP API server (e.g., "+config.DefaultAPI+")\n"+
			"If the default port is busy, the next free port is used")
	cmd.Flags().StringVar(&config.Global.Name, "name", "",
		"Instance name shown by /health (generated if not provided)")
	cmd.Flags().StringVar(&config.Global.ConfigFile, "config", "",
		"Path to a YAML or JSON config file; explicit flags override its values")

	// Backend flags
	cmd.Flags().StringVar(&config.Global.Backend, "backend", config.DefaultBackend,
		"Generation backend: placeholder or http")
	cmd.Flags().StringVar(&config.Global.BackendURL, "backend-url", "",
		"Base URL of the inference worker (required with --backend=http)")
	cmd.Flags().StringVar(&config.Global.Model, "model", config.DefaultModel,
		"Model name sent to the inference worker")
	cmd.Flags().Int64Var(&config.Global.Seed, "seed", 0,
		"Generator seed sent to the inference worker")

	// Batching flags
	cmd.Flags().IntVar(&config.Global.MaxBatchSize, "max-batch-size", config.DefaultMaxBatchSize,
		"Maximum number of prompts per backend call (1-64)")
	cmd.Flags().IntVar(&config.Global.InferenceSteps, "inference-steps", config.DefaultInferenceSteps,
		"Inference steps passed to the backend")
	cmd.Flags().DurationVar(&config.Global.BackendTimeout, "backend-timeout", config.DefaultBackendTimeout,
		"Maximum duration of one backend call; a timeout fails the whole batch")

	// Cache flags
	cmd.Flags().StringVar(&config.Global.RedisAddr, "redis", "",
		"Redis address for the image cache (e.g., 127.0.0.1:6379); empty disables caching")
	cmd.Flags().StringVar(&config.Global.RedisPassword, "redis-password", "",
		"Redis password")
	cmd.Flags().IntVar(&config.Global.RedisDB, "redis-db", 0,
		"Redis logical database")
	cmd.Flags().DurationVar(&config.Global.CacheTTL, "cache-ttl", config.DefaultCacheTTL,
		"How long generated images stay cached")

	// Rate limiting flags
	cmd.Flags().Float64Var(&config.Global.RateLimit, "rate-limit", 0,
		"Image requests per second allowed per client IP (0 disables)")
	cmd.Flags().IntVar(&config.Global.RateBurst, "rate-burst", config.DefaultRateBurst,
		"Burst size for the per-client rate limiter")

	// Operational flags
	cmd.Flags().StringVar(&config.Global.LogLevel, "log-level", config.DefaultLogLevel,
		"Log level: DEBUG, INFO, WARN, ERROR")
	cmd.Flags().StringVar(&config.Global.LogFile, "log-file", "",
		"Write logs to a rotating file instead of the terminal")
	cmd.Flags().IntVar(&config.Global.LogMaxSize, "log-max-size", configDefaults.DefaultLogMaxSizeMB,
		"Maximum size in megabytes of a log file before it is rotated")
	cmd.Flags().IntVar(&config.Global.LogMaxBackups, "log-max-backups", configDefaults.DefaultLogMaxBackups,
		"Number of rotated log files to keep")
}

// CheckExplicitFlags checks if flags were explicitly set by the user
func CheckExplicitFlags(cmd *cobra.Command) {
	for name, field := range flagFields {
		config.Global.SetExplicitlySet(field, cmd.Flags().Changed(name))
	}
}
