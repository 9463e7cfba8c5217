package sdk

import (
	"context"
	"os"
	"time"

	"github.com/newsdesk-dev/newsdesk-queue/internal/engine"
)

// New initializes a store based on the environment.
// It returns the Newsdesk interface, so the app doesn't care if it's local
// or remote.
func New(dataDir string) (Newsdesk, error) {
	// 1. Check if a remote daemon is defined in environment variables
	if addr := os.Getenv("NEWSDESK_ADDR"); addr != "" {
		client := Connect(addr)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx); err == nil {
			return client, nil
		}
		// Daemon unreachable; fall back to local mode below
	}

	// 2. Fallback to embedded mode: the same engine the daemon runs, inside
	// this process, with file persistence.
	p, err := engine.NewPersistence(dataDir)
	if err != nil {
		return nil, err
	}
	initial, err := p.Load()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.NewMemStorage(initial, p)), nil
}
