// Package alpaca is the brokerage collaborator. In LIVE mode orders go to
// Alpaca as GTC market orders; in DRY_RUN mode fills are simulated locally
// so the rest of the system can run without credentials.
package alpaca

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"hourly-trading-bot/internal/interfaces"
	"hourly-trading-bot/internal/types"
)

type Params struct {
	Mode      string // DRY_RUN or LIVE
	APIKey    string
	APISecret string
	BaseURL   string // paper or live endpoint
}

type Alpaca struct {
	p      Params
	client *alpaca.Client
}

var _ interfaces.Broker = (*Alpaca)(nil)

func New(p Params) *Alpaca {
	a := &Alpaca{p: p}
	if p.Mode == "LIVE" {
		a.client = alpaca.NewClient(alpaca.ClientOpts{
			APIKey:     p.APIKey,
			APISecret:  p.APISecret,
			BaseURL:    p.BaseURL,
			HTTPClient: &http.Client{Timeout: 30 * time.Second},
		})
	}
	return a
}

func (a *Alpaca) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if a.client == nil {
		return a.simulateOrder(ctx, req)
	}

	side := alpaca.Buy
	if req.Side == types.Sell {
		side = alpaca.Sell
	}
	qty := req.Qty
	order, err := a.client.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:      req.Symbol,
		Qty:         &qty,
		Side:        side,
		Type:        alpaca.Market,
		TimeInForce: alpaca.GTC,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("place %s order for %s: %w", req.Side, req.Symbol, err)
	}

	return types.OrderResp{
		OrderID:     order.ID,
		Status:      string(order.Status),
		FilledPrice: order.FilledAvgPrice,
	}, nil
}

func (a *Alpaca) simulateOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if err := ctx.Err(); err != nil {
		return types.OrderResp{}, err
	}
	price := decimal.NewFromFloat(1000 + rand.Float64()*100)
	return types.OrderResp{
		OrderID:     uuid.NewString(),
		Status:      "filled",
		FilledPrice: &price,
	}, nil
}
