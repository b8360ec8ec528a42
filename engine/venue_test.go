package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantor/papertrade/config"
	"github.com/quantor/papertrade/store"
)

func TestNewBrokerBacktestAlwaysPaper(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Trading.Mode = config.ModeBacktest
	cfg.Trading.Broker = "tiger" // ignored in backtest mode

	b, err := NewBroker(cfg, store.NewMemory(), discard())
	require.NoError(t, err)
	assert.Equal(t, "paper", b.Name())
}

func TestNewBrokerTigerNeedsCredentials(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Trading.Mode = config.ModeLive
	cfg.Trading.Broker = "tiger"

	// Missing key file fails at construction.
	cfg.Tiger.PrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")
	_, err := NewBroker(cfg, store.NewMemory(), discard())
	assert.Error(t, err)

	// With a key but no account, the venue itself rejects.
	keyPath := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(keyPath, []byte("dummy"), 0600))
	cfg.Tiger = config.TigerConfig{PrivateKeyPath: keyPath}
	_, err = NewBroker(cfg, store.NewMemory(), discard())
	assert.Error(t, err)

	cfg.Tiger = config.TigerConfig{TigerID: "t1", Account: "a1", PrivateKeyPath: keyPath}
	b, err := NewBroker(cfg, store.NewMemory(), discard())
	require.NoError(t, err)
	assert.Equal(t, "tiger", b.Name())
}

func TestNewBrokerUIBot(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Trading.Mode = config.ModeLive
	cfg.Trading.Broker = "uibot"

	_, err := NewBroker(cfg, store.NewMemory(), discard())
	assert.Error(t, err, "window title is required")

	cfg.UIBot.WindowTitle = "Trading Terminal"
	b, err := NewBroker(cfg, store.NewMemory(), discard())
	require.NoError(t, err)
	assert.Equal(t, "uibot", b.Name())
}
