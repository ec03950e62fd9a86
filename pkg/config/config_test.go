package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ".txt", cfg.Library.Extension)
	assert.Equal(t, []string{"utf-8", "iso-8859-1"}, cfg.Encodings())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
library:
  dir: /data/datasheets
  workers: 4
  secondary_encoding: windows-1252
extract:
  verbose: true
  match_timeout: 500ms
server:
  addr: 127.0.0.1:9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/datasheets", cfg.Library.Dir)
	assert.Equal(t, 4, cfg.Library.Workers)
	assert.Equal(t, "windows-1252", cfg.Library.SecondaryEncoding)
	assert.True(t, cfg.Extract.Verbose)
	assert.Equal(t, 500*time.Millisecond, cfg.Extract.MatchTimeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "sources.db", cfg.Sources.DB)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "library:\n  dir: from-file\n")
	t.Setenv("PARTMATCH_LIBRARY_DIR", "from-env")
	t.Setenv("PARTMATCH_LIBRARY_PRIMARY_ENCODING", "iso-8859-1")
	t.Setenv("PARTMATCH_SERVER_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Library.Dir)
	assert.Equal(t, "iso-8859-1", cfg.Library.PrimaryEncoding)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoad_QUICServer(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: :8443
  tls_cert: /etc/partmatch/cert.pem
  tls_key: /etc/partmatch/key.pem
  http3: true
`)
	t.Setenv("PARTMATCH_SERVER_MCP_QUIC", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/etc/partmatch/cert.pem", cfg.Server.TLSCert)
	assert.Equal(t, "/etc/partmatch/key.pem", cfg.Server.TLSKey)
	assert.True(t, cfg.Server.HTTP3)
	assert.True(t, cfg.Server.MCPQUIC)
	assert.False(t, Default().Server.HTTP3)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad encoding":  "library:\n  primary_encoding: klingon-8\n",
		"bad workers":   "library:\n  workers: -1\n",
		"bad extension": "library:\n  extension: txt\n",
		"bad yaml":      "library: [\n",
		"cert only":     "server:\n  tls_cert: cert.pem\n",
		"mcp over tcp":  "server:\n  mcp_quic: true\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "library.dir", envKey("PARTMATCH_LIBRARY_DIR"))
	assert.Equal(t, "sources.check_interval", envKey("PARTMATCH_SOURCES_CHECK_INTERVAL"))
	assert.Equal(t, "verbose", envKey("PARTMATCH_VERBOSE"))
}
