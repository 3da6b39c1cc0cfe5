package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	ObjectStore   ObjectStoreConfig
	Result        ResultConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type ObjectStoreConfig struct {
	Endpoint        string
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

type ResultConfig struct {
	ArraySize      int
	KeepDefaultNA  bool
	NAValues       []string
	Quoting        int
	Unload         bool
	UnloadLocation string
	Engine         string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("LAKEREAD_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid LAKEREAD_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "LAKEREAD_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_OBJECTSTORE_REGION", &cfg.ObjectStore.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_OBJECTSTORE_PROFILE", &cfg.ObjectStore.Profile); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEREAD_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEREAD_RESULT_ARRAYSIZE", &cfg.Result.ArraySize); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEREAD_RESULT_KEEP_DEFAULT_NA", &cfg.Result.KeepDefaultNA); err != nil {
		return Config{}, err
	}
	if err := applyStringList(lookup, "LAKEREAD_RESULT_NA_VALUES", &cfg.Result.NAValues); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKEREAD_RESULT_QUOTING", &cfg.Result.Quoting); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEREAD_RESULT_UNLOAD", &cfg.Result.Unload); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_RESULT_UNLOAD_LOCATION", &cfg.Result.UnloadLocation); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKEREAD_RESULT_ENGINE", &cfg.Result.Engine); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "LAKEREAD_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKEREAD_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.Result.ArraySize <= 0 {
		return Config{}, fmt.Errorf("result arraysize must be positive")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "lakeread"},
		ObjectStore: ObjectStoreConfig{
			Endpoint:        "localhost:9000",
			Region:          "us-east-1",
			AccessKeyID:     "minio",
			SecretAccessKey: "miniostorage",
			UseSSL:          false,
		},
		Result: ResultConfig{
			ArraySize:     1000,
			KeepDefaultNA: false,
			NAValues:      []string{""},
			Quoting:       1,
			Unload:        false,
			Engine:        "auto",
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyStringList(lookup LookupFunc, key string, dst *[]string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.Split(raw, ",")
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
