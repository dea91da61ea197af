package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/db"
)

const DefaultJournalLimit = 50

// JournalReader lists recorded mutations, newest first
type JournalReader interface {
	GetMutations(ctx context.Context, limit int) ([]db.MutationRecord, error)
}

// Journal returns the most recent mutation outcomes recorded by this console
func Journal(ctx context.Context, journal JournalReader, logger *zap.Logger, limit int) ([]db.MutationRecord, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}

	logger.Debug("Fetching mutation journal", zap.Int("limit", limit))
	records, err := journal.GetMutations(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mutation journal: %w", err)
	}
	logger.Debug("Found journal records", zap.Int("count", len(records)))
	return records, nil
}
