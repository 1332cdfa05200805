package confero

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "confero.db", cfg.DataPath)
	assert.Equal(t, 1536, cfg.EmbeddingDim)
	assert.Equal(t, -1.0, cfg.MinSimilarity)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\ndata_path: /var/lib/confero\nembedding_model: custom-embed\n")
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/var/lib/confero", cfg.DataPath)
	assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
	// Untouched keys keep their defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.GenerativeModel)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\n"), 0644))

	t.Setenv("CONFERO_ADDR", ":7070")
	t.Setenv("CONFERO_GENERATIVE_MODEL", "env-model")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "env-model", cfg.GenerativeModel)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfig_AIConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.EmbeddingHost = "http://embed.local"
	cfg.GenerativeHost = "http://gen.local"
	cfg.EmbeddingDim = 3

	aiConfig := cfg.AIConfig()
	require.NoError(t, aiConfig.Validate())
	// Validate normalizes hosts to the /v1 suffix.
	assert.Equal(t, "http://embed.local/v1", aiConfig.EmbeddingHost)
	assert.Equal(t, "http://gen.local/v1", aiConfig.GenerativeHost)
	assert.Equal(t, 3, aiConfig.EmbeddingDim)
}
