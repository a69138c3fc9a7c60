package convstate

import "time"

// Config controls the Redis-backed conversation state store.
type Config struct {
	Addr        string
	Password    string
	DB          int
	TTL         time.Duration
	MaxLocal    int
	DialTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.TTL == 0 {
		c.TTL = 30 * time.Minute
	}
	if c.MaxLocal == 0 {
		c.MaxLocal = 10000
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}
