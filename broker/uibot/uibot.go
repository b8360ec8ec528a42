// Package uibot drives a desktop trading terminal through UI automation.
// Only the skeleton ships; every call reports that automation is not
// implemented on this platform.
package uibot

import (
	"context"
	"fmt"

	"github.com/quantor/papertrade/broker"
)

// Broker is a conforming stub for the UI-automation venue.
type Broker struct {
	// WindowTitle identifies the terminal window to attach to.
	WindowTitle string

	connected bool
}

var _ broker.Broker = (*Broker)(nil)

// New creates a UI-automation venue bound to a terminal window title.
func New(windowTitle string) (*Broker, error) {
	if windowTitle == "" {
		return nil, fmt.Errorf("uibot: window title is required")
	}
	return &Broker{WindowTitle: windowTitle}, nil
}

func (b *Broker) Name() string { return "uibot" }

func (b *Broker) Connect(context.Context) error {
	b.connected = true
	return nil
}

func (b *Broker) Disconnect(context.Context) error {
	b.connected = false
	return nil
}

func (b *Broker) notImplemented(op string) error {
	if !b.connected {
		return fmt.Errorf("uibot %s: %w", op, broker.ErrNotConnected)
	}
	return fmt.Errorf("uibot %s: UI automation not implemented", op)
}

func (b *Broker) Balance(context.Context) (broker.Balance, error) {
	return broker.Balance{}, b.notImplemented("balance")
}

func (b *Broker) Positions(context.Context) ([]broker.Position, error) {
	return nil, b.notImplemented("positions")
}

func (b *Broker) Position(context.Context, string) (*broker.Position, error) {
	return nil, b.notImplemented("position")
}

func (b *Broker) PlaceOrder(context.Context, broker.OrderRequest) (*broker.Order, error) {
	return nil, b.notImplemented("place order")
}

func (b *Broker) Order(context.Context, string) (*broker.Order, error) {
	return nil, b.notImplemented("order")
}

func (b *Broker) CancelOrder(context.Context, string) (bool, error) {
	return false, b.notImplemented("cancel order")
}

func (b *Broker) TradesByOrder(context.Context, string) ([]broker.Trade, error) {
	return nil, b.notImplemented("trades")
}
