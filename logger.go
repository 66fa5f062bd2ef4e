package match

import (
	"log/slog"
	"os"
)

var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger replaces the package-level logger. Intended for use by
// cmd/matchcore at startup, or by tests that want to silence output.
func SetLogger(l *slog.Logger) {
	logger = l
}
