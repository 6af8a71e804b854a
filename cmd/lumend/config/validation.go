package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/concave-dev/lumen/internal/backend"
	"github.com/concave-dev/lumen/internal/logging"
	"github.com/concave-dev/lumen/internal/names"
	"github.com/concave-dev/lumen/internal/validate"
)

// LoadConfigFile applies --config, if given, beneath the explicit flags.
func LoadConfigFile() error {
	if Global.ConfigFile == "" {
		return nil
	}

	fc, err := LoadFile(Global.ConfigFile)
	if err != nil {
		return err
	}
	if err := Global.ApplyFile(fc); err != nil {
		return err
	}

	logging.Info("Loaded configuration from %s", Global.ConfigFile)
	return nil
}

// InitializeConfig applies environment variable overrides. Explicit flags
// still win.
func InitializeConfig() {
	if os.Getenv("DEBUG") == "true" && !Global.IsExplicitlySet(LogLevelField) {
		Global.LogLevel = "DEBUG"
		logging.Info("DEBUG environment variable detected, setting log level to DEBUG")
	}

	if url := os.Getenv("LUMEN_BACKEND_URL"); url != "" && !Global.IsExplicitlySet(BackendURLField) {
		Global.BackendURL = url
		logging.Info("LUMEN_BACKEND_URL environment variable detected, using worker at %s", url)
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" && !Global.IsExplicitlySet(RedisAddrField) {
		Global.RedisAddr = addr
		logging.Info("REDIS_ADDR environment variable detected, caching images in %s", addr)
	}

	if Global.Name == "" {
		Global.Name = names.Generate()
		logging.Info("Generated instance name: %s", Global.Name)
	}

	if Global.MaxPorts == 0 {
		Global.MaxPorts = DefaultMaxPorts
	}
	if maxPortsEnv := os.Getenv("MAX_PORTS"); maxPortsEnv != "" {
		if maxPorts, err := strconv.Atoi(maxPortsEnv); err == nil {
			Global.MaxPorts = maxPorts
		} else {
			logging.Warn("Invalid MAX_PORTS environment variable '%s', using default: %d", maxPortsEnv, Global.MaxPorts)
		}
	}
}

// ValidateConfig checks and normalizes Global before the daemon starts.
// APIAddr is split into host and APIPort.
func ValidateConfig() error {
	if err := logging.ValidateLogLevel(Global.LogLevel); err != nil {
		return err
	}

	if err := names.Validate(Global.Name); err != nil {
		return err
	}

	apiNetAddr, err := validate.ParseBindAddress(Global.APIAddr)
	if err != nil {
		logging.Error("Invalid API address '%s': %v", Global.APIAddr, err)
		return fmt.Errorf("invalid API address: %w", err)
	}
	if err := validate.ValidateField(apiNetAddr.Port, "required,min=1,max=65535"); err != nil {
		return fmt.Errorf("API address requires specific port (not 0): %w", err)
	}
	Global.APIAddr = apiNetAddr.Host
	Global.APIPort = apiNetAddr.Port

	switch Global.Backend {
	case backend.KindPlaceholder:
	case backend.KindHTTP:
		if err := validate.ValidateHTTPURL(Global.BackendURL, "backend URL"); err != nil {
			return fmt.Errorf("--backend=http requires --backend-url: %w", err)
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be %s or %s)", Global.Backend, backend.KindPlaceholder, backend.KindHTTP)
	}

	if err := validate.ValidateIntRange(Global.MaxBatchSize, 1, 64, "max batch size"); err != nil {
		return err
	}
	if err := validate.ValidateIntRange(Global.InferenceSteps, 1, 500, "inference steps"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveTimeout(Global.BackendTimeout, "backend timeout"); err != nil {
		return err
	}

	if Global.RedisAddr != "" {
		if err := validate.ValidateDialAddress(Global.RedisAddr, "redis address"); err != nil {
			return err
		}
		if err := validate.ValidatePositiveTimeout(Global.CacheTTL, "cache TTL"); err != nil {
			return err
		}
	}

	if Global.RateLimit < 0 {
		return fmt.Errorf("rate limit must be non-negative, got %v", Global.RateLimit)
	}
	if Global.RateLimit > 0 && Global.RateBurst <= 0 {
		return fmt.Errorf("rate burst must be positive when rate limiting is enabled, got %d", Global.RateBurst)
	}

	if Global.LogFile != "" {
		if Global.LogMaxSize <= 0 {
			return fmt.Errorf("log max size must be positive, got %d MB", Global.LogMaxSize)
		}
		if Global.LogMaxBackups < 0 {
			return fmt.Errorf("log max backups must be non-negative, got %d", Global.LogMaxBackups)
		}
	}

	if Global.MaxPorts < 1 || Global.MaxPorts > 10000 {
		return fmt.Errorf("max-ports must be between 1 and 10000, got: %d", Global.MaxPorts)
	}

	return nil
}
