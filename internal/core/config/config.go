package config

import (
	"time"

	"relocator/internal/core/domain"
	"relocator/internal/infra/inventory"
	redisclient "relocator/internal/infra/redis"
	"relocator/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	API      inventory.Config   `yaml:"api"`
	Engine   EngineConfig       `yaml:"engine"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// EngineConfig holds relocation engine settings.
type EngineConfig struct {
	Site               string        `yaml:"site"`                // site whose registry is loaded
	SentinelRoom       string        `yaml:"sentinel_room"`       // reserved room name
	ActivationDistance float64       `yaml:"activation_distance"` // pointer travel before a press becomes a drag
	RefreshDelay       time.Duration `yaml:"refresh_delay"`       // settle-to-reconfirm delay
	PollInterval       time.Duration `yaml:"poll_interval"`       // refresh queue poll interval
}

// applyDefaults fills unset fields.
func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Engine.SentinelRoom == "" {
		c.Engine.SentinelRoom = domain.SentinelRoom
	}
	if c.Engine.RefreshDelay == 0 {
		c.Engine.RefreshDelay = 5 * time.Second
	}
	if c.Engine.PollInterval == 0 {
		c.Engine.PollInterval = time.Second
	}
}
