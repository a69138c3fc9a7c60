package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/evidentbank/router/internal/convstate"
	"github.com/evidentbank/router/internal/embeddings"
	"github.com/evidentbank/router/internal/faqindex"
	"github.com/evidentbank/router/internal/llmclient"
	"github.com/evidentbank/router/internal/productstore"
	"github.com/evidentbank/router/internal/registry"
	"github.com/evidentbank/router/internal/router"
)

// RouterConfig is the full set of tunables for cmd/router, loaded from a
// YAML file (CONFIG_PATH, default /app/config/router.yaml) with env var
// overrides for anything a deployment needs to flip without a redeploy.
type RouterConfig struct {
	Server struct {
		Port        int `mapstructure:"port"`
		MetricsPort int `mapstructure:"metrics_port"`
	} `mapstructure:"server"`

	Routing struct {
		FAQSimilarityThreshold float64       `mapstructure:"faq_similarity_threshold"`
		EvidenceTimeout        time.Duration `mapstructure:"evidence_timeout"`
		EvidenceRetryBackoff   time.Duration `mapstructure:"evidence_retry_backoff"`
		RequestDeadline        time.Duration `mapstructure:"request_deadline"`
		Greetings              []string      `mapstructure:"greetings"`
	} `mapstructure:"routing"`

	ProductStore productstore.Config `mapstructure:"product_store"`
	ConvState    convstate.Config    `mapstructure:"conversation_state"`
	FAQIndex     faqindex.Config     `mapstructure:"faq_index"`
	LLM          llmclient.Config    `mapstructure:"llm"`
	Embeddings   embeddings.Config   `mapstructure:"embeddings"`
	Registry     registry.Config     `mapstructure:"registry"`
}

// Load reads RouterConfig from the YAML file at path (CONFIG_PATH env var
// if path is empty, falling back to /app/config/router.yaml), then applies
// env var overrides for every leaf key, mirroring the teacher's
// env-overrides-config-file layering.
func Load(path string) (*RouterConfig, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "/app/config/router.yaml"
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// No config file on disk: defaults + env vars only, which is the
		// normal shape for a container that configures purely through env.
	}

	var cfg RouterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)

	v.SetDefault("routing.faq_similarity_threshold", 0.60)
	v.SetDefault("routing.evidence_timeout", "100ms")
	v.SetDefault("routing.evidence_retry_backoff", "50ms")
	v.SetDefault("routing.request_deadline", "2s")
	v.SetDefault("routing.greetings", []string{
		"hi", "hello", "hey", "good morning", "good afternoon", "good evening", "namaste",
	})

	v.SetDefault("product_store.host", "postgres")
	v.SetDefault("product_store.port", 5432)
	v.SetDefault("product_store.user", "router")
	v.SetDefault("product_store.database", "router")
	v.SetDefault("product_store.sslmode", "require")

	v.SetDefault("conversation_state.addr", "redis:6379")
	v.SetDefault("conversation_state.ttl", "30m")

	v.SetDefault("faq_index.host", "qdrant")
	v.SetDefault("faq_index.port", 6333)
	v.SetDefault("faq_index.collection", "faq_embeddings")

	v.SetDefault("llm.base_url", "http://llm-sidecar:8100")

	v.SetDefault("embeddings.defaultmodel", "text-embedding-3-small")

	v.SetDefault("registry.refresh_interval", "60s")
}

// RouterTunables converts the routing section into the router package's
// Config, building the greeting set from the configured slice.
func (c *RouterConfig) RouterTunables() router.Config {
	greetings := make(map[string]struct{}, len(c.Routing.Greetings))
	for _, g := range c.Routing.Greetings {
		greetings[strings.ToLower(g)] = struct{}{}
	}
	if len(greetings) == 0 {
		return router.DefaultConfig()
	}
	return router.Config{
		FAQSimilarityThreshold: c.Routing.FAQSimilarityThreshold,
		EvidenceTimeout:        c.Routing.EvidenceTimeout,
		EvidenceRetryBackoff:   c.Routing.EvidenceRetryBackoff,
		RequestDeadline:        c.Routing.RequestDeadline,
		Greetings:              greetings,
	}
}
