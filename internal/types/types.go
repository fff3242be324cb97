package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the trade direction recorded in the ledger.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Status of a trade attempt. ERROR attempts stay in the ledger but never
// advance the daily gate.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// TradeDetails carries the order outcome. OrderID and FilledPrice are set
// on SUCCESS, ErrorMessage on ERROR.
type TradeDetails struct {
	Symbol       string           `json:"symbol"`
	Quantity     decimal.Decimal  `json:"quantity"`
	OrderID      string           `json:"order_id,omitempty"`
	FilledPrice  *decimal.Decimal `json:"filled_price,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

// TradeRecord is immutable once written.
type TradeRecord struct {
	Timestamp time.Time    `json:"timestamp"`
	Type      Side         `json:"type"`
	Status    Status       `json:"status"`
	Details   TradeDetails `json:"details"`
}

func (r TradeRecord) Succeeded() bool { return r.Status == StatusSuccess }

type OrderReq struct {
	Symbol string
	Side   Side
	Qty    decimal.Decimal
}

type OrderResp struct {
	OrderID     string           `json:"order_id"`
	Status      string           `json:"status"`
	FilledPrice *decimal.Decimal `json:"filled_price,omitempty"`
}

// Decision is the strategy output for one tick.
type Decision struct {
	Action Side   `json:"action,omitempty"` // empty means hold
	Reason string `json:"reason"`
}

func (d Decision) Hold() bool { return d.Action == "" }

// TickResult summarizes one scheduler cycle.
type TickResult struct {
	Time   time.Time    `json:"time"`
	Hour   int          `json:"hour"`
	Action Side         `json:"action,omitempty"`
	Order  *OrderResp   `json:"order,omitempty"`
	Record *TradeRecord `json:"record,omitempty"`
	Notes  string       `json:"notes"`
}
