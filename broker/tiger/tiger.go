// Package tiger is the Tiger Brokers API venue. Only the connection
// plumbing exists; every trading call reports that live routing is not
// implemented.
package tiger

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/quantor/papertrade/broker"
)

const defaultBaseURL = "https://openapi.tigerfintech.com/gateway"

// Credentials holds the Tiger open-API identity.
type Credentials struct {
	TigerID    string
	Account    string
	PrivateKey string
}

// Broker is a conforming stub for the Tiger venue.
type Broker struct {
	creds      Credentials
	baseURL    string
	httpClient *http.Client
	connected  bool
}

var _ broker.Broker = (*Broker)(nil)

// New creates a Tiger venue client. Missing credentials fail here so a bad
// configuration is caught at startup.
func New(creds Credentials) (*Broker, error) {
	if creds.TigerID == "" || creds.Account == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("tiger: tiger_id, account and private key are all required")
	}
	return &Broker{
		creds:   creds,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (b *Broker) Name() string { return "tiger" }

// Connect records the session as connected. Handshake and signing are not
// implemented.
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
		return fmt.Errorf("tiger %s: %w", op, broker.ErrNotConnected)
	}
	return fmt.Errorf("tiger %s: live routing not implemented", op)
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
