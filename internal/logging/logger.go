// Package logging builds the structured logger shared by the mem commands.
//
// Logs go to stderr so they never mix with the JSON written to stdout.
// Warnings are always shown; debug records only with verbose output.
package logging

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var (
	// Global session ID for the current execution
	sessionID     string
	sessionIDOnce sync.Once
)

// SessionID returns the id attached to every record from this process.
func SessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// New returns a text logger writing to w.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("session", SessionID())
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
