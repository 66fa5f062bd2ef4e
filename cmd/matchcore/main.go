// Command matchcore runs a single-instrument matching engine: a TCP
// order intake, a stdin console for ad hoc orders and stats, and a
// trade log written to trades.csv. Ported from the original engine's
// OrderBookServer (console thread, stats thread, TCP thread).
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/solstice-systems/matchcore"
	"github.com/solstice-systems/matchcore/protocol"
	"github.com/solstice-systems/matchcore/tradesink"
	"github.com/solstice-systems/matchcore/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // .env is optional; CLI args and defaults still apply if absent.

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	match.SetLogger(logger)

	port := 8080
	if len(os.Args) > 1 {
		p, err := strconv.Atoi(os.Args[1])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", os.Args[1], err)
		}
		port = p
	} else if envPort := os.Getenv("MATCHCORE_PORT"); envPort != "" {
		p, err := strconv.Atoi(envPort)
		if err != nil {
			return fmt.Errorf("invalid MATCHCORE_PORT %q: %w", envPort, err)
		}
		port = p
	}

	tradeFile := os.Getenv("MATCHCORE_TRADE_LOG")
	if tradeFile == "" {
		tradeFile = "trades.csv"
	}

	csvSink, err := tradesink.OpenCSV(tradeFile)
	if err != nil {
		return err
	}
	defer csvSink.Close()

	var totalTrades atomic.Int64
	sink := match.TradeSinkFunc(func(t match.Trade) {
		csvSink.OnTrade(t)
		totalTrades.Add(1)
		fmt.Printf("TRADE: Buy Order %d matched with Sell Order %d at price %s for quantity %d\n",
			t.BuyOrderID, t.SellOrderID, t.Price.StringFixed(2), t.Quantity)
	})

	engine := match.NewController(match.DefaultSubmissionQueueCapacity, match.DefaultPoolCapacity, sink)
	engine.Start()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := transport.Listen(fmt.Sprintf(":%d", port), engine, logger)
	if err != nil {
		return err
	}

	fmt.Println("Ultra-Low Latency Order Book Engine Starting...")
	fmt.Printf("Server listening on port %d\n", port)

	go func() {
		if err := server.Serve(ctx); err != nil {
			logger.Error("tcp server stopped", slog.String("error", err.Error()))
		}
	}()

	go statsLoop(ctx, engine, &totalTrades)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	fmt.Println("Commands: 'quit', 'stats', or JSON orders")
	fmt.Println(`Example: {"side":"buy","price":100.50,"quantity":10}`)
	fmt.Println()

	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		consoleLoop(engine, &totalTrades)
	}()

	select {
	case <-consoleDone:
	case <-sigCh:
	}

	cancel()
	server.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return engine.Shutdown(shutdownCtx)
}

func consoleLoop(engine *match.Controller, totalTrades *atomic.Int64) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "quit" || line == "exit":
			return
		case line == "stats":
			printStats(engine, totalTrades.Load())
		case line != "":
			processOrderLine(engine, line)
		}
	}
}

func processOrderLine(engine *match.Controller, line string) {
	start := time.Now()

	decoded, err := protocol.DecodeLine(line)
	if err != nil {
		fmt.Println("Error: Invalid order format")
		return
	}

	side := match.Buy
	if decoded.Side == protocol.SideSell {
		side = match.Sell
	}

	if _, err := engine.Submit(side, decoded.Price, decoded.Quantity); err != nil {
		fmt.Println("Error:", err)
		return
	}

	bids, asks := engine.OrderCounts()
	fmt.Printf("Input processing: %dµs | Buy orders: %d | Sell orders: %d\n",
		time.Since(start).Microseconds(), bids, asks)
}

func statsLoop(ctx context.Context, engine *match.Controller, totalTrades *atomic.Int64) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			printStats(engine, totalTrades.Load())
		}
	}
}

func printStats(engine *match.Controller, totalTrades int64) {
	stats := engine.Stats()
	bids, asks := engine.OrderCounts()
	fmt.Println()
	fmt.Println("=== ORDER BOOK STATISTICS ===")
	fmt.Printf("Total Orders Processed: %d\n", stats.Count())
	fmt.Printf("Total Trades Executed: %d\n", totalTrades)
	fmt.Printf("Average Latency: %.2fµs\n", stats.AverageMicros())
	fmt.Printf("Min Latency: %.2fµs\n", stats.MinMicros())
	fmt.Printf("Max Latency: %.2fµs\n", stats.MaxMicros())
	fmt.Printf("Active Buy Orders: %d\n", bids)
	fmt.Printf("Active Sell Orders: %d\n", asks)
	fmt.Println("============================")
	fmt.Println()
}
