package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidSide is returned when an InboundOrder names a side other
// than "buy"/"sell" (case-insensitive). Grounded on the original
// parser's parseOrderSide, which rejects anything else.
var ErrInvalidSide = errors.New("protocol: invalid order side")

// Decoded is a fully-validated order ready to hand to match.OrderPool.
// It mirrors match.Order's constructor fields without importing the
// match package, so protocol stays decodable independent of matching.
type Decoded struct {
	Side     SideString
	Price    decimal.Decimal
	Quantity uint32
}

// DecodeLine parses one line of the wire protocol. A malformed line
// (bad JSON, unparseable price, unknown side, non-positive quantity)
// returns a descriptive error and nothing else; the caller decides
// whether that closes the connection (per this protocol, it does not
// — only the decode is rejected, the connection stays open).
func DecodeLine(line string) (Decoded, error) {
	var in InboundOrder
	if err := json.Unmarshal([]byte(line), &in); err != nil {
		return Decoded{}, fmt.Errorf("protocol: decode line: %w", err)
	}

	side := SideString(strings.ToLower(string(in.Side)))
	if side != SideBuy && side != SideSell {
		return Decoded{}, fmt.Errorf("%w: %q", ErrInvalidSide, in.Side)
	}

	if !in.Price.IsPositive() {
		return Decoded{}, fmt.Errorf("protocol: price must be positive, got %s", in.Price)
	}

	if in.Quantity == 0 {
		return Decoded{}, errors.New("protocol: quantity must be positive")
	}

	return Decoded{Side: side, Price: in.Price, Quantity: in.Quantity}, nil
}
