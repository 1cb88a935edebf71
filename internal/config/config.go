package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration for commands that read chain state.
type Config struct {
	Network      Network
	Owner        string
	Tokens       map[string]string
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
	Slippage     float64
	Out          string
	PGDSN        string
	LogLevel     string
}

// MathConfig holds configuration for the offline math commands.
type MathConfig struct {
	LogLevel string
}

// Load merges .env, config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("network", "nile")
		v.SetDefault("max-retries", 3)
		v.SetDefault("retry-backoff", 500*time.Millisecond)
		v.SetDefault("timeout", 30*time.Second)
		v.SetDefault("slippage", 5.0)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("api-key", "SUNSWAP_API_KEY", "TRONGRID_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind api key: %w", err)
	}

	network, err := resolveNetwork(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Network:      network,
		Owner:        v.GetString("owner"),
		Tokens:       getStringMap(v, "token"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		Timeout:      v.GetDuration("timeout"),
		Slippage:     v.GetFloat64("slippage"),
		Out:          v.GetString("out"),
		PGDSN:        v.GetString("pg-dsn"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.Slippage < 0 || cfg.Slippage > 100 {
		return Config{}, fmt.Errorf("slippage %v not in [0, 100]", cfg.Slippage)
	}

	return cfg, nil
}

// LoadMath merges config file, environment variables, and flags into MathConfig.
func LoadMath(cfgFile string, flags *pflag.FlagSet) (MathConfig, error) {
	v, err := newViper(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return MathConfig{}, err
	}
	return MathConfig{
		LogLevel: v.GetString("log-level"),
	}, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	// A missing .env is normal; only the process environment is used then.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SUNSWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	defaults(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case []string:
		return parseStringMap(strings.Join(typed, ","))
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return parseStringMap(strings.Join(items, ","))
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
