// Package protocol defines the wire schema accepted by the TCP order
// intake: one JSON object per line, decoded into a Decoded value.
package protocol

import "github.com/shopspring/decimal"

// SideString is the textual encoding of match.Side on the wire, as
// sent by a client. Either case is accepted, matching the original
// parser's case-insensitive "buy"/"BUY".
type SideString string

const (
	SideBuy  SideString = "buy"
	SideSell SideString = "sell"
)

// InboundOrder is the JSON shape a client sends for one order. ID is
// assigned by the server, not the client — the wire format never
// carries one. Price is decimal.Decimal rather than string: its
// UnmarshalJSON accepts both a bare JSON number (100.50) and a quoted
// one ("100.50"), so the wire format doesn't force clients to quote
// numeric fields.
type InboundOrder struct {
	Side     SideString      `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Quantity uint32          `json:"quantity"`
}
