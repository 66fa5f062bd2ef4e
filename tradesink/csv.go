// Package tradesink provides match.TradeSink implementations for
// recording trades outside the matching process.
package tradesink

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/solstice-systems/matchcore"
)

const csvHeader = "timestamp,buy_order_id,sell_order_id,price,quantity\n"

// CSV appends one line per trade to a file, creating it and writing
// the header if it doesn't already exist. It is meant to sit behind a
// match.TradeLogQueue (via match.Controller's logSink), never called
// directly from the matching worker, so a slow disk never shows up as
// matching latency.
type CSV struct {
	file   *os.File
	logger *slog.Logger
}

// OpenCSV opens path for appending, writing the header only if the
// file is new. Write and flush failures during OnTrade are logged
// through slog.Default(); use SetLogger to point them elsewhere.
func OpenCSV(path string) (*CSV, error) {
	_, statErr := os.Stat(path)
	needsHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tradesink: open %s: %w", path, err)
	}

	if needsHeader {
		if _, err := f.WriteString(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("tradesink: write header: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return nil, fmt.Errorf("tradesink: flush header: %w", err)
		}
	}

	return &CSV{file: f, logger: slog.Default()}, nil
}

// SetLogger replaces the logger OnTrade reports write/flush failures
// through.
func (c *CSV) SetLogger(l *slog.Logger) {
	c.logger = l
}

// OnTrade implements match.TradeSink, appending one line and flushing.
// A write or flush failure is never escalated — there's no caller on
// this path to return an error to — but it is logged so it's at least
// observable.
func (c *CSV) OnTrade(t match.Trade) {
	line := fmt.Sprintf("%s,%d,%d,%s,%d\n",
		t.Timestamp.Format("2006-01-02 15:04:05"),
		t.BuyOrderID,
		t.SellOrderID,
		t.Price.StringFixed(2),
		t.Quantity,
	)
	if _, err := c.file.WriteString(line); err != nil {
		c.logger.Error("tradesink: write failed", slog.String("error", err.Error()))
		return
	}
	if err := c.file.Sync(); err != nil {
		c.logger.Error("tradesink: flush failed", slog.String("error", err.Error()))
	}
}

// Close closes the underlying file.
func (c *CSV) Close() error {
	return c.file.Close()
}
