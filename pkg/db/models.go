package db

import "time"

// MutationRecord is one item of a single or bulk mutation
type MutationRecord struct {
	ID         string
	BatchID    string
	Env        string
	Actor      string
	Action     string
	TargetID   int64
	Detail     string
	Succeeded  bool
	Error      string
	RecordedAt time.Time
}
