// Package config: YAML/JSON config file support for lumend.
//
// File values are applied beneath the command line. A flag the user set
// explicitly always wins over the file, and the file wins over flag defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/concave-dev/lumen/internal/logging"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk config layout. YAML is a superset of JSON, so a
// config.json with the same keys loads through the same decoder. Pointer
// fields distinguish "absent" from a zero value.
type FileConfig struct {
	Server struct {
		API           string   `yaml:"api"`
		Name          string   `yaml:"name"`
		RateLimit     *float64 `yaml:"rate_limit"`
		RateBurst     *int     `yaml:"rate_burst"`
		LogLevel      string   `yaml:"log_level"`
		LogFile       string   `yaml:"log_file"`
		LogMaxSize    *int     `yaml:"log_max_size"`
		LogMaxBackups *int     `yaml:"log_max_backups"`
	} `yaml:"server"`

	InferenceConfig struct {
		BatchProcessingSize *int `yaml:"batch_processing_size"`
		InferenceStep       *int `yaml:"inference_step"`
	} `yaml:"inference_config"`

	ModelsConfig struct {
		Path struct {
			SDXLModel string `yaml:"sdxl_model"`
		} `yaml:"path"`
	} `yaml:"models_config"`

	Backend struct {
		Kind    string `yaml:"kind"`
		URL     string `yaml:"url"`
		Seed    *int64 `yaml:"seed"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`

	Cache struct {
		Redis    string `yaml:"redis"`
		Password string `yaml:"password"`
		DB       *int   `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"cache"`
}

// LoadFile reads and parses a config file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &fc, nil
}

// ApplyFile copies file values into c for every field the user did not set
// on the command line.
func (c *Config) ApplyFile(fc *FileConfig) error {
	setString := func(field ConfigField, dst *string, v string) {
		if v != "" && !c.IsExplicitlySet(field) {
			*dst = v
		}
	}
	setInt := func(field ConfigField, dst *int, v *int) {
		if v != nil && !c.IsExplicitlySet(field) {
			*dst = *v
		}
	}
	setDuration := func(field ConfigField, dst *time.Duration, v, name string) error {
		if v == "" || c.IsExplicitlySet(field) {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q in config file: %w", name, v, err)
		}
		*dst = d
		return nil
	}

	setString(APIAddrField, &c.APIAddr, fc.Server.API)
	setString(NameField, &c.Name, fc.Server.Name)
	setString(LogLevelField, &c.LogLevel, fc.Server.LogLevel)
	setString(LogFileField, &c.LogFile, fc.Server.LogFile)
	setInt(LogMaxSizeField, &c.LogMaxSize, fc.Server.LogMaxSize)
	setInt(LogMaxBackupsField, &c.LogMaxBackups, fc.Server.LogMaxBackups)
	setInt(RateBurstField, &c.RateBurst, fc.Server.RateBurst)
	if fc.Server.RateLimit != nil && !c.IsExplicitlySet(RateLimitField) {
		c.RateLimit = *fc.Server.RateLimit
	}

	setInt(MaxBatchSizeField, &c.MaxBatchSize, fc.InferenceConfig.BatchProcessingSize)
	setInt(InferenceStepsField, &c.InferenceSteps, fc.InferenceConfig.InferenceStep)
	setString(ModelField, &c.Model, fc.ModelsConfig.Path.SDXLModel)

	setString(BackendField, &c.Backend, fc.Backend.Kind)
	setString(BackendURLField, &c.BackendURL, fc.Backend.URL)
	if fc.Backend.Seed != nil && !c.IsExplicitlySet(SeedField) {
		c.Seed = *fc.Backend.Seed
	}
	if err := setDuration(BackendTimeoutField, &c.BackendTimeout, fc.Backend.Timeout, "backend timeout"); err != nil {
		return err
	}

	setString(RedisAddrField, &c.RedisAddr, fc.Cache.Redis)
	setString(RedisPasswordField, &c.RedisPassword, fc.Cache.Password)
	setInt(RedisDBField, &c.RedisDB, fc.Cache.DB)
	if err := setDuration(CacheTTLField, &c.CacheTTL, fc.Cache.TTL, "cache TTL"); err != nil {
		return err
	}

	logging.Debug("Config: Applied config file values")
	return nil
}
