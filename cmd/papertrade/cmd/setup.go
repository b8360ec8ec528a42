package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/config"
	"github.com/quantor/papertrade/engine"
	"github.com/quantor/papertrade/internal/logging"
	"github.com/quantor/papertrade/store"
	"github.com/quantor/papertrade/strategy"
)

// session wires everything a subcommand needs from one config file.
type session struct {
	cfg    *config.Config
	store  store.Store
	broker broker.Broker
	engine *engine.Engine
	log    *slog.Logger
}

func (s *session) close() {
	if err := s.store.Close(); err != nil {
		s.log.Error("close store", "error", err)
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Type {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DBPath)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

// newSession loads the config and builds the store, venue and engine. All
// configuration mistakes fail here, before any command logic runs.
func newSession(configPath string) (*session, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, err
	}

	log := logging.New(os.Stderr, cfg.Log.Level)

	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	strat, err := strategy.DefaultRegistry().New(cfg.Trading.Strategy, cfg.Trading.MaxPositionValue)
	if err != nil {
		st.Close()
		return nil, err
	}

	b, err := engine.NewBroker(cfg, st, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	markPrices := cfg.Trading.Mode == config.ModeBacktest
	return &session{
		cfg:    cfg,
		store:  st,
		broker: b,
		engine: engine.New(b, st, strat, log, markPrices),
		log:    log,
	}, nil
}
