package db

import "context"

// Journal records the outcome of every mutation the console issues.
// It is an audit trail only; nothing reads it back as domain state.
type Journal interface {
	RecordMutations(ctx context.Context, records []MutationRecord) error
	GetMutations(ctx context.Context, limit int) ([]MutationRecord, error)
}

// NopJournal discards records. Used when no journal database is configured.
type NopJournal struct{}

func (NopJournal) RecordMutations(ctx context.Context, records []MutationRecord) error {
	return nil
}

func (NopJournal) GetMutations(ctx context.Context, limit int) ([]MutationRecord, error) {
	return nil, nil
}
