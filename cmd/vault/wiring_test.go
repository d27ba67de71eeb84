package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becomeliminal/memory-vault/config"
	"github.com/becomeliminal/memory-vault/core"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("VAULT_EMBEDDER", "mock")
	t.Setenv("VAULT_EMBEDDING_DIMENSIONS", "16")
	t.Setenv("VAULT_DATA_DIR", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := config.Parse()
	require.NoError(t, err)
	return cfg
}

func TestStoreOnly_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	cfg := mockConfig(t)

	a, err := storeOnly(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, a.vault.AddBatch(ctx, []core.Record{{
		Content:    "first memory",
		Filename:   "a.txt",
		SourceType: core.SourceText,
		UploadTime: time.Now(),
	}}))
	a.Close()

	b, err := storeOnly(ctx, cfg)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.vault.AddBatch(ctx, []core.Record{{
		Content:    "second memory",
		Filename:   "b.txt",
		SourceType: core.SourceText,
		UploadTime: time.Now(),
	}}))

	results, err := b.vault.Search(ctx, "second memory", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "memory_1", results[0].ID)

	_, err = os.Stat(cfg.Storage.MediaPath())
	assert.NoError(t, err)
}

func TestBuildApp_RequiresModelCredentials(t *testing.T) {
	cfg := mockConfig(t)

	_, err := buildApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")
}

func TestBuildApp(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Models.AnthropicAPIKey = "test-key"

	a, err := buildApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.ingestor)
	assert.NotNil(t, a.responder)
}

func TestNewEmbedder_ONNXWithoutTag(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Embedding.Provider = config.EmbedderONNX

	_, err := storeOnly(context.Background(), cfg)
	assert.ErrorContains(t, err, "onnx")
}

func TestCountCommand(t *testing.T) {
	mockConfig(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"count", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "0\n", out.String())
}
