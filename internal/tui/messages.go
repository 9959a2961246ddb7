package tui

import (
	"time"

	"github.com/msto63/lox/internal/server"
	"github.com/msto63/lox/internal/store"
)

// Message types for tea.Cmd async operations

// processedMsg is sent when a source has been scanned and parsed
type processedMsg struct {
	payload  *server.Payload
	duration time.Duration
	err      error
}

// historyMsg is sent when recent runs have been loaded
type historyMsg struct {
	runs []*store.Run
	err  error
}
