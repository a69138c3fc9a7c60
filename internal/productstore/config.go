package productstore

import "time"

// Config holds the read-only product catalog's connection settings.
type Config struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	IdleConnections int
	MaxLifetime     time.Duration
	SSLMode         string
}

func (c *Config) applyDefaults() {
	if c.MaxConnections == 0 {
		c.MaxConnections = 25
	}
	if c.IdleConnections == 0 {
		c.IdleConnections = 5
	}
	if c.MaxLifetime == 0 {
		c.MaxLifetime = 5 * time.Minute
	}
	if c.SSLMode == "" {
		c.SSLMode = "require"
	}
}
