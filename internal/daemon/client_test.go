package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcdickinson/rsdoc/internal/config"
	"github.com/jcdickinson/rsdoc/internal/registry"
	"github.com/jcdickinson/rsdoc/internal/rpc"
)

// startDaemon runs a Server on a unix socket and returns a connected client.
func startDaemon(t *testing.T, cfg *config.Config, f *stubFetcher) (*Client, <-chan error) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	srv := NewServer(cfg, socketPath,
		WithFetcher(f),
		WithRegistry(&stubRegistry{version: "1.0.0", crates: []registry.Crate{{Name: "tiny"}}}),
		WithLogger(discardLogger()))

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	})

	client := NewClient(socketPath)
	require.NoError(t, client.WaitAvailable(5*time.Second))
	return client, done
}

func TestClient_RoundTrip(t *testing.T) {
	client, done := startDaemon(t, testConfig(), &stubFetcher{})
	ctx := context.Background()

	text, err := client.CrateDocs(ctx, rpc.CrateDocsRequest{Name: "tiny", Version: "0.1.0"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "# Module `tiny`"))

	text, err = client.DocItem(ctx, rpc.DocItemRequest{Name: "tiny", Version: "0.1.0", ItemPath: "tiny::Point"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "# Struct `Point`"))

	text, err = client.SearchDocs(ctx, rpc.SearchDocsRequest{Name: "tiny", Version: "0.1.0", Query: "point"})
	require.NoError(t, err)
	assert.Contains(t, text, "Found 1 items")

	crates, err := client.SearchCrates(ctx, rpc.SearchCratesRequest{Query: "tiny"})
	require.NoError(t, err)
	assert.Equal(t, []registry.Crate{{Name: "tiny"}}, crates)

	st, err := client.Status(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Crates, 1)

	metrics, err := client.Metrics(ctx)
	require.NoError(t, err)
	assert.Contains(t, metrics, "rsdoc_cache_entries 1")

	require.NoError(t, client.ClearCache(ctx))
	st, err = client.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Crates)

	require.NoError(t, client.Shutdown(ctx))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop after shutdown request")
	}
	assert.False(t, client.IsAvailable())
}

func TestClient_RemoteError(t *testing.T) {
	client, _ := startDaemon(t, testConfig(), &stubFetcher{})

	_, err := client.DocItem(context.Background(), rpc.DocItemRequest{Name: "tiny", Version: "0.1.0", ItemPath: "Nope"})
	require.Error(t, err)
	assert.EqualError(t, err, "Item 'Nope' not found in tiny v0.1.0")

	var remote *rpc.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.True(t, remote.NotFound())
}

func TestServer_ExpiresWhenIdle(t *testing.T) {
	cfg := testConfig()
	cfg.Daemon.ExpirationSeconds = 1
	client, done := startDaemon(t, cfg, &stubFetcher{})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not expire")
	}
	assert.False(t, client.IsAvailable())
	_, err := os.Stat(client.socketPath)
	assert.True(t, os.IsNotExist(err))
}

func TestServer_Preload(t *testing.T) {
	cfg := testConfig()
	cfg.Docs.Preload = []config.CrateSpec{{Name: "tiny", Version: "0.1.0"}, {Name: "ghost"}}
	f := &stubFetcher{}
	client, _ := startDaemon(t, cfg, f)

	require.Eventually(t, func() bool {
		st, err := client.Status(context.Background())
		return err == nil && len(st.Crates) == 1 && len(f.Calls()) == 2
	}, 5*time.Second, 20*time.Millisecond)

	assert.ElementsMatch(t, []string{"tiny@0.1.0", "ghost@1.0.0"}, f.Calls())

	st, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []rpc.CachedCrate{{Name: "tiny", Version: "0.1.0"}}, st.Crates)
}

func TestServer_StopsWithContext(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "d.sock")
	srv := NewServer(testConfig(), socketPath, WithFetcher(&stubFetcher{}),
		WithRegistry(&stubRegistry{}), WithLogger(discardLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	client := NewClient(socketPath)
	require.NoError(t, client.WaitAvailable(5*time.Second))
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop when its context ended")
	}
}
