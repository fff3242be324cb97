package interfaces

import (
	"context"

	"hourly-trading-bot/internal/types"
)

// Broker submits orders to the brokerage. Any failure, including a
// timeout imposed by the implementation, surfaces as an error and is
// recorded as an ERROR trade.
type Broker interface {
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
