package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port    string `yaml:"port"`
	DBPath  string `yaml:"db_path"`
	LogFile string `yaml:"log_file"`

	Security struct {
		APIKey     string `yaml:"api_key"`
		AdminToken string `yaml:"admin_token"`
		GameToken  string `yaml:"game_token"`
	} `yaml:"security"`

	Pool struct {
		Address string `yaml:"address"`
		Owner   string `yaml:"owner"`
		House   string `yaml:"house"`
	} `yaml:"pool"`

	// Assets are stablecoin symbols registered at startup.
	Assets []string `yaml:"assets"`

	RedisAddr    string `yaml:"redis_addr"`
	SolvencyCron string `yaml:"solvency_cron"`
}

// Load reads the optional YAML file at path, then applies environment
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.Port = getEnv("PORT", or(cfg.Port, "8080"))
	cfg.DBPath = getEnv("DB_PATH", or(cfg.DBPath, "db.sqlite"))
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.Security.APIKey = getEnv("API_KEY", cfg.Security.APIKey)
	cfg.Security.AdminToken = getEnv("ADMIN_TOKEN", cfg.Security.AdminToken)
	cfg.Security.GameToken = getEnv("GAME_TOKEN", cfg.Security.GameToken)
	cfg.Pool.Address = getEnv("POOL_ADDRESS", cfg.Pool.Address)
	cfg.Pool.Owner = getEnv("OWNER_ADDRESS", cfg.Pool.Owner)
	cfg.Pool.House = getEnv("HOUSE_ADDRESS", cfg.Pool.House)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.SolvencyCron = getEnv("SOLVENCY_CRON", or(cfg.SolvencyCron, "0 */5 * * * *"))
	if v := os.Getenv("ASSETS"); v != "" {
		cfg.Assets = splitList(v)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Security.APIKey == "" || c.Security.AdminToken == "" || c.Security.GameToken == "" {
		errs = append(errs, errors.New("missing API_KEY, ADMIN_TOKEN or GAME_TOKEN"))
	}
	for name, v := range map[string]string{
		"pool address":  c.Pool.Address,
		"owner address": c.Pool.Owner,
		"house address": c.Pool.House,
	} {
		if !common.IsHexAddress(v) {
			errs = append(errs, fmt.Errorf("invalid %s %q", name, v))
		}
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
