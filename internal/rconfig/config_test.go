package rconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mrcece/aedis/internal/rconfig"
	"github.com/mrcece/aedis/redisconn"
	"github.com/stretchr/testify/require"
)

func TestLoadAndApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "redis.yaml")
	contents := "host: cache.internal\nport: \"6380\"\nping_interval: 2s\nenable_reconnect: true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	f, err := rconfig.Load(path)
	require.NoError(t, err)

	opts := redisconn.Opts{}
	f.ApplyTo(&opts)

	require.Equal(t, "cache.internal", opts.Host)
	require.Equal(t, "6380", opts.Port)
	require.Equal(t, 2*time.Second, opts.PingInterval)
	require.True(t, opts.EnableReconnect)
}

func TestApplyToLeavesUnsetFieldsAlone(t *testing.T) {
	f := &rconfig.File{Host: "cache.internal"}
	opts := redisconn.Opts{Port: "9999"}
	f.ApplyTo(&opts)
	require.Equal(t, "cache.internal", opts.Host)
	require.Equal(t, "9999", opts.Port)
}
