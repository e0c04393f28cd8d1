package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/servify/servify-dashboard/internal/analytics"
)

func newCacheCLI(t *testing.T) (*CacheCLI, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cli, err := NewCacheCLI(analytics.NewCache(client, time.Minute, nil))
	require.NoError(t, err)
	return cli, mr
}

func TestBumpCommandJSON(t *testing.T) {
	cli, mr := newCacheCLI(t)
	require.NoError(t, mr.Set("analytics:version", "4"))

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	code := cli.BumpCommand(context.Background(), CacheBumpOptions{JSONOutput: true, Stdout: stdout, Stderr: stderr})
	require.Equal(t, 0, code, stderr.String())

	var summary CacheBumpSummary
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &summary))
	require.True(t, summary.OK)
	require.Equal(t, int64(5), summary.Version)
}

func TestBumpCommandHuman(t *testing.T) {
	cli, _ := newCacheCLI(t)
	stdout := new(bytes.Buffer)
	code := cli.BumpCommand(context.Background(), CacheBumpOptions{Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, 0, code)
	require.Contains(t, stdout.String(), "version is now 1")
}

func TestBumpCommandRedisDown(t *testing.T) {
	cli, mr := newCacheCLI(t)
	mr.Close()
	stderr := new(bytes.Buffer)
	code := cli.BumpCommand(context.Background(), CacheBumpOptions{Stdout: new(bytes.Buffer), Stderr: stderr})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "cache bump:")
}

func TestBumpCommandCacheDisabled(t *testing.T) {
	cli, err := NewCacheCLI(analytics.NewCache(nil, time.Minute, nil))
	require.NoError(t, err)
	stdout := new(bytes.Buffer)
	require.Equal(t, 0, cli.BumpCommand(context.Background(), CacheBumpOptions{Stdout: stdout}))
	require.Contains(t, stdout.String(), "disabled")
}

func TestNewCacheCLIRequiresCache(t *testing.T) {
	_, err := NewCacheCLI(nil)
	require.Error(t, err)
}
