package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alejoevilches/laabuelachela/internal/app"
)

const (
	envGRPCAddr            = "KITCHEN_GRPC_ADDR"
	envHTTPAddr            = "KITCHEN_HTTP_ADDR"
	envStorageDriver       = "KITCHEN_STORAGE_DRIVER"
	envPostgresDSN         = "KITCHEN_POSTGRES_DSN"
	envPostgresAutoMigrate = "KITCHEN_POSTGRES_AUTO_MIGRATE"
	envSeedCatalog         = "KITCHEN_SEED_CATALOG"
	envKafkaBrokers        = "KITCHEN_KAFKA_BROKERS"
	envKafkaTopic          = "KITCHEN_KAFKA_TOPIC"
	envTimezone            = "KITCHEN_TIMEZONE"
	envFetchTimeout        = "KITCHEN_FETCH_TIMEOUT"
	envDocumentCacheSize   = "KITCHEN_DOCUMENT_CACHE_SIZE"
	envShutdownTimeout     = "KITCHEN_SHUTDOWN_TIMEOUT"
)

type envLookup func(key string) (string, bool)

// readConfig читает конфигурацию из окружения процесса.
func readConfig() (app.Config, []string) {
	return readConfigFromEnv(os.LookupEnv)
}

// readConfigFromEnv накладывает KITCHEN_* поверх app.DefaultConfig.
// Некорректные значения игнорируются, по каждому возвращается предупреждение.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, value, err))
	}

	if v, ok := nonEmpty(lookup, envGRPCAddr); ok {
		cfg.GRPCAddr = v
	}
	if v, ok := nonEmpty(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := nonEmpty(lookup, envStorageDriver); ok {
		driver := strings.ToLower(v)
		switch driver {
		case app.StorageDriverMemory, app.StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			warn(envStorageDriver, v, fmt.Errorf("expected %s or %s", app.StorageDriverMemory, app.StorageDriverPostgres))
		}
	}
	if v, ok := nonEmpty(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := nonEmpty(lookup, envPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := nonEmpty(lookup, envSeedCatalog); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envSeedCatalog, v, err)
		} else {
			cfg.SeedCatalog = parsed
		}
	}
	if v, ok := nonEmpty(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = splitList(v)
	}
	if v, ok := nonEmpty(lookup, envKafkaTopic); ok {
		cfg.KafkaTopic = v
	}
	if v, ok := nonEmpty(lookup, envTimezone); ok {
		if loc, err := time.LoadLocation(v); err != nil {
			warn(envTimezone, v, err)
		} else {
			cfg.Timezone = loc
		}
	}
	if v, ok := nonEmpty(lookup, envFetchTimeout); ok {
		if parsed, err := parseDuration(v); err != nil {
			warn(envFetchTimeout, v, err)
		} else {
			cfg.FetchTimeout = parsed
		}
	}
	if v, ok := nonEmpty(lookup, envDocumentCacheSize); ok {
		if parsed, err := parseInt(v); err != nil {
			warn(envDocumentCacheSize, v, err)
		} else {
			cfg.DocumentCacheSize = parsed
		}
	}
	if v, ok := nonEmpty(lookup, envShutdownTimeout); ok {
		if parsed, err := parseDuration(v); err != nil {
			warn(envShutdownTimeout, v, err)
		} else {
			cfg.ShutdownTimeout = parsed
		}
	}

	return cfg, warnings
}

func nonEmpty(lookup envLookup, key string) (string, bool) {
	value, ok := lookup(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

// parseInt принимает только положительные значения.
func parseInt(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return value, nil
}

// parseDuration принимает только положительные длительности.
func parseDuration(raw string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
