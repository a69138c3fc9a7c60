package llmclient

import "time"

// Config controls the HTTP sidecar the generator hands synthesis prompts
// off to.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}
