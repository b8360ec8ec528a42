package engine

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quantor/papertrade/broker"
	"github.com/quantor/papertrade/broker/paper"
	"github.com/quantor/papertrade/broker/tiger"
	"github.com/quantor/papertrade/broker/uibot"
	"github.com/quantor/papertrade/config"
	"github.com/quantor/papertrade/store"
)

// NewBroker builds the venue the configuration selects. Backtests always run
// on the simulated venue regardless of the broker name; a venue that cannot
// be built is a configuration error here rather than a failure mid-run.
func NewBroker(cfg *config.Config, st store.Store, log *slog.Logger) (broker.Broker, error) {
	name := cfg.Trading.Broker
	if cfg.Trading.Mode == config.ModeBacktest {
		name = "paper"
	}

	switch name {
	case "paper":
		return paper.New(st, cfg.Account.Session, cfg.Account.InitialCapital, cfg.Account.Currency, log)

	case "tiger":
		key, err := os.ReadFile(cfg.Tiger.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("tiger private key: %w", err)
		}
		return tiger.New(tiger.Credentials{
			TigerID:    cfg.Tiger.TigerID,
			Account:    cfg.Tiger.Account,
			PrivateKey: string(key),
		})

	case "uibot":
		return uibot.New(cfg.UIBot.WindowTitle)

	default:
		return nil, fmt.Errorf("unknown broker: %s", name)
	}
}
