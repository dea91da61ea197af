package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-admin/pkg/db"
)

const insertMutation = `
	INSERT INTO mutation_journal (id, batch_id, env, actor, action, target_id, detail, succeeded, error, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// RecordMutations stores every record of a batch in one transaction
func (d *DB) RecordMutations(ctx context.Context, records []db.MutationRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range records {
		recordedAt := r.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now()
		}
		batch.Queue(insertMutation,
			r.ID, r.BatchID, r.Env, r.Actor, r.Action, r.TargetID,
			nullable(r.Detail), r.Succeeded, nullable(r.Error), recordedAt.UTC())
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert mutation records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetMutations returns the most recent records, newest first
func (d *DB) GetMutations(ctx context.Context, limit int) ([]db.MutationRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, batch_id, env, actor, action, target_id, detail, succeeded, error, recorded_at
		FROM mutation_journal
		ORDER BY recorded_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mutations: %w", err)
	}
	defer rows.Close()

	var records []db.MutationRecord
	for rows.Next() {
		var r db.MutationRecord
		var detail, errMsg *string
		if err := rows.Scan(&r.ID, &r.BatchID, &r.Env, &r.Actor, &r.Action, &r.TargetID,
			&detail, &r.Succeeded, &errMsg, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mutation: %w", err)
		}
		if detail != nil {
			r.Detail = *detail
		}
		if errMsg != nil {
			r.Error = *errMsg
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mutations: %w", err)
	}
	return records, nil
}

var _ db.Journal = (*DB)(nil)
