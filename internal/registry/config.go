package registry

import "time"

// Config controls how often the entity registry refreshes its cache from
// the product store.
type Config struct {
	// RefreshInterval is the minimum time between rebuilds; the spec floor
	// is 60s so a cache-miss storm never hammers the product store.
	RefreshInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.RefreshInterval < 60*time.Second {
		c.RefreshInterval = 60 * time.Second
	}
}
