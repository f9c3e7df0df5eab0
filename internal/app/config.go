package app

import (
	"time"

	"github.com/alejoevilches/laabuelachela/internal/layout"
	"github.com/alejoevilches/laabuelachela/internal/messaging/kafka"
	"github.com/alejoevilches/laabuelachela/internal/service/printing"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска kitchen-service.
type Config struct {
	GRPCAddr string
	// HTTPAddr обслуживает /metrics, health-проверки и маршруты печати.
	HTTPAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool
	// SeedCatalog засевает стандартные продукты в пустой каталог при старте.
	SeedCatalog bool

	KafkaBrokers []string
	KafkaTopic   string

	// Timezone задаёт локальную зону для границ недели.
	Timezone          *time.Location
	FetchTimeout      time.Duration
	DocumentCacheSize int
	Layout            layout.Options
	ShutdownTimeout   time.Duration
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:            ":50051",
		HTTPAddr:            ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		SeedCatalog:         true,
		KafkaTopic:          kafka.TopicOrderEvents,
		Timezone:            time.Local,
		FetchTimeout:        15 * time.Second,
		DocumentCacheSize:   printing.DefaultDocumentCacheSize,
		Layout:              layout.DefaultOptions(),
		ShutdownTimeout:     5 * time.Second,
	}
}
