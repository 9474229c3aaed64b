// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/funildev/funil/pkg/persistence"
	"github.com/funildev/funil/pkg/persistence/memory"
	"github.com/funildev/funil/pkg/persistence/postgresql"
)

// NewPersistence creates a persistence layer from a database URL.
// postgres:// and postgresql:// URLs select the PostgreSQL backend;
// memory:// selects the in-memory backend used for local development.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic("Failed to create PostgreSQL persistence: " + err.Error())
		}

		return p
	case "memory":
		return memory.NewPersistence()
	default:
		panic("Unsupported database URL: " + databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}

	if provider == "postgres" {
		return "postgresql"
	}

	return provider
}
