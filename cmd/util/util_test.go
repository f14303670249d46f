package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
}

func TestGetSessionConfigFromFlags(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("host", "10.0.0.2")
	viper.Set("port", 7000)
	viper.Set("cluster", true)

	cfg, err := GetSessionConfig()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", cfg.Host)
	assert.Equal(t, 7000, cfg.Port)
	assert.True(t, cfg.Cluster)
	assert.Equal(t, "10.0.0.2:7000", cfg.Name)
	assert.Equal(t, common.DefaultDelimiter, cfg.Delimiter)
}

func TestGetSessionConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	file := filepath.Join(t.TempDir(), "gedis.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
connections:
  - id: local
    name: Local
    host: 127.0.0.1
    port: 6379
  - name: prod
    host: redis.internal
    port: 7000
    password: secret
    cluster: true
`), 0o600))
	viper.Set("config", file)

	viper.Set("connection", "prod")
	cfg, err := GetSessionConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.ID)
	assert.Equal(t, "redis.internal", cfg.Host)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
	assert.True(t, cfg.Cluster)

	viper.Set("connection", "local")
	cfg, err = GetSessionConfig()
	require.NoError(t, err)
	assert.Equal(t, "Local", cfg.Name)
	assert.False(t, cfg.Cluster)

	viper.Set("connection", "missing")
	_, err = GetSessionConfig()
	assert.Error(t, err)
}
