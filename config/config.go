package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

type Role string

const (
	// RoleStandalone runs the room session and the gateway over an in-process fabric.
	RoleStandalone Role = "standalone"
	// RoleCoordinator owns the room session and serves clients over redis.
	RoleCoordinator Role = "coordinator"
	// RoleWorker only serves clients; commands go to the coordinator over redis.
	RoleWorker Role = "worker"
)

type Config struct {
	Bind           string
	Port           int
	Room           string
	Role           Role
	MaxPlayers     int
	RedisAddr      string
	RedisDB        int
	PostgresURL    string
	AllowedOrigins []string
	KeywordsFile   string
	LogLevel       string
	PrettyLogs     bool
	AuditQueue     int
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	switch c.Role {
	case RoleStandalone, RoleCoordinator, RoleWorker:
	default:
		return fmt.Errorf("invalid role %q (must be standalone, coordinator or worker)", c.Role)
	}
	if c.Clustered() && c.RedisAddr == "" {
		return fmt.Errorf("--redis-addr is required for role %s", c.Role)
	}
	if c.Room == "" {
		return errors.New("--room must not be empty")
	}
	if c.MaxPlayers < 1 {
		return fmt.Errorf("invalid max players: %d", c.MaxPlayers)
	}
	if c.AuditQueue < 1 {
		return fmt.Errorf("invalid audit queue size: %d", c.AuditQueue)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// Clustered reports whether events travel through redis.
func (c *Config) Clustered() bool {
	return c.Role != RoleStandalone
}

// OwnsSession reports whether this process applies room commands.
func (c *Config) OwnsSession() bool {
	return c.Role != RoleWorker
}
