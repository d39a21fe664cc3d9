package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/salonkit/leadgate/internal/core/domain"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Credential pools. Multiple secrets per tier, comma separated; entries
	// may be plain or bcrypt hashes.
	APIKeys   []string `env:"API_KEYS"`
	AdminKeys []string `env:"ADMIN_KEYS"`

	// Admin session signing.
	SessionSecret string        `env:"ADMIN_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"ADMIN_SESSION_TTL, default=720h"`

	// Tenant resolution.
	DefaultTenant    string `env:"DEFAULT_TENANT"`
	TenantHostMarker string `env:"TENANT_HOST_MARKER"`
	// Tenants is the catalog served by tenant.list, entries as "id:name".
	Tenants []string `env:"TENANTS"`

	// LeadStore selects the backing store: "mongo" or "redis".
	LeadStore string `env:"LEAD_STORE, default=mongo"`

	// Upstream forwarding. Empty URL disables the proxy routes.
	UpstreamURL     string        `env:"UPSTREAM_URL"`
	UpstreamAPIKey  string        `env:"UPSTREAM_API_KEY"`
	UpstreamPaths   []string      `env:"UPSTREAM_PATHS"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT, default=30s"`

	// WebhookURL receives lead.captured events. Empty disables notification.
	WebhookURL    string `env:"WEBHOOK_URL"`
	NotifyWorkers int    `env:"NOTIFY_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=leadgate"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// IsProduction reports whether the service should apply production hardening
// (Secure cookies, for one).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// TenantCatalog parses the TENANTS entries into domain tenants. An entry
// without a name uses its id as the display name.
func (c *Config) TenantCatalog() []domain.Tenant {
	tenants := make([]domain.Tenant, 0, len(c.Tenants))
	for _, entry := range c.Tenants {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, name, ok := strings.Cut(entry, ":")
		if !ok || name == "" {
			name = id
		}
		tenants = append(tenants, domain.Tenant{ID: id, Name: name})
	}
	return tenants
}
