package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.60, cfg.Routing.FAQSimilarityThreshold)
	assert.Equal(t, 100*time.Millisecond, cfg.Routing.EvidenceTimeout)
	assert.Equal(t, 2*time.Second, cfg.Routing.RequestDeadline)
	assert.Contains(t, cfg.Routing.Greetings, "namaste")
	assert.Equal(t, "qdrant", cfg.FAQIndex.Host)
}

func TestLoadOverridesDefaultsFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router.yaml")
	contents := `
routing:
  faq_similarity_threshold: 0.75
server:
  port: 9999
product_store:
  host: pg.internal
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Routing.FAQSimilarityThreshold)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "pg.internal", cfg.ProductStore.Host)
}

func TestLoadOverridesFromEnv(t *testing.T) {
	t.Setenv("ROUTING_FAQ_SIMILARITY_THRESHOLD", "0.9")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Routing.FAQSimilarityThreshold)
}

func TestRouterTunablesBuildsGreetingSet(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	tunables := cfg.RouterTunables()
	_, ok := tunables.Greetings["hi"]
	assert.True(t, ok)
	assert.Equal(t, 0.60, tunables.FAQSimilarityThreshold)
}
