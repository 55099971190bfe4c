package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startWatch runs Watch on path and returns the reloaded configs along with a stop function
// that cancels the watch and waits for it to return.
func startWatch(t *testing.T, path string) (<-chan *Config, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	reloaded := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { reloaded <- cfg })
	}()

	// give the watcher a moment to register the directory
	time.Sleep(100 * time.Millisecond)

	stop := func() {
		cancel()
		select {
		case err := <-done:
			assert.Nil(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("watch did not stop after cancel")
		}
	}
	return reloaded, stop
}

func waitForPort(t *testing.T, reloaded <-chan *Config, port int) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.Server.HTTPPort == port {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for reload with http_port %d", port)
		}
	}
}

func TestWatchReload(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 8080\n")
	reloaded, stop := startWatch(t, p)
	defer stop()

	// an invalid write keeps the previous config and does not notify
	require.Nil(t, os.WriteFile(p, []byte("server:\n  http_port: -1\n"), 0o600))
	time.Sleep(100 * time.Millisecond)
	require.Nil(t, os.WriteFile(p, []byte("server:\n  http_port: 9000\n"), 0o600))

	waitForPort(t, reloaded, 9000)
}

func TestWatchAtomicSave(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 8080\n")
	reloaded, stop := startWatch(t, p)
	defer stop()

	dir := filepath.Dir(p)
	for _, port := range []string{"9001", "9002"} {
		tmp := filepath.Join(dir, ".config.yaml.swp")
		require.Nil(t, os.WriteFile(tmp, []byte("server:\n  http_port: "+port+"\n"), 0o600))
		require.Nil(t, os.Rename(tmp, p))
	}

	// the second rename only reloads if the watch survived the first replacement
	waitForPort(t, reloaded, 9002)
}

func TestWatchIgnoresSiblings(t *testing.T) {
	p := writeConfig(t, "server:\n  http_port: 8080\n")
	reloaded, stop := startWatch(t, p)
	defer stop()

	sibling := filepath.Join(filepath.Dir(p), "other.yaml")
	require.Nil(t, os.WriteFile(sibling, []byte("server:\n  http_port: 9003\n"), 0o600))

	select {
	case cfg := <-reloaded:
		t.Fatalf("unexpected reload with http_port %d", cfg.Server.HTTPPort)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestIsConfigUpdate(t *testing.T) {
	path := filepath.Join("etc", "weibull", "config.yaml")

	testData := map[string]struct {
		event    fsnotify.Event
		expected bool
	}{
		"write":       {fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		"create":      {fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		"unclean":     {fsnotify.Event{Name: filepath.Join("etc", "weibull", ".", "config.yaml"), Op: fsnotify.Write}, true},
		"remove":      {fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		"rename away": {fsnotify.Event{Name: path, Op: fsnotify.Rename}, false},
		"chmod":       {fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		"sibling":     {fsnotify.Event{Name: filepath.Join("etc", "weibull", "other.yaml"), Op: fsnotify.Write}, false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, isConfigUpdate(td.event, path))
		})
	}
}

func TestWatchMissingFile(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
