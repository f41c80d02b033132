package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gss-search/internal/config"
)

func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		verify func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "absent sections keep defaults",
			yaml: "auth:\n  client_secret_file: /tmp/secret.json\n",
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "/tmp/secret.json", cfg.Auth.ClientSecretFile)
				assert.Equal(t, 20, cfg.Display.MaxColumnWidth)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "partial section keeps unmentioned fields",
			yaml: "logging:\n  level: debug\n",
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
		{
			name: "unknown keys ignored",
			yaml: "plugins:\n  x: 1\ndisplay:\n  delimiter: \"\\t\"\n",
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "\t", cfg.Display.Delimiter)
			},
		},
		{
			name: "empty file is a no-op",
			yaml: "",
			verify: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.New("/base").Display, cfg.Display)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New("/base")
			require.NoError(t, config.ShallowMergeYAML(cfg, writeOverlay(t, tt.yaml)))
			tt.verify(t, cfg)
		})
	}
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	t.Run("nil target", func(t *testing.T) {
		assert.Error(t, config.ShallowMergeYAML(nil, writeOverlay(t, "")))
	})

	t.Run("missing file", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New("/base"), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("section of wrong shape", func(t *testing.T) {
		err := config.ShallowMergeYAML(config.New("/base"), writeOverlay(t, "display: [1, 2]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"display"`)
	})
}
