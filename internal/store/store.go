// Package store keeps per-user state that outlives a single session: the
// set of incorrectly answered question IDs and the recently served IDs.
package store

import "context"

// IncorrectSet is append-only with dedup; it can be cleared as a whole or
// shrunk one ID at a time from the review screen.
type IncorrectSet interface {
	AddIncorrect(ctx context.Context, scope, questionID string) (added bool, err error)
	Incorrect(ctx context.Context, scope string) ([]string, error)
	RemoveIncorrect(ctx context.Context, scope, questionID string) error
	ClearIncorrect(ctx context.Context, scope string) error
}

// RecentList remembers the IDs picked by the last sampling.
type RecentList interface {
	Recent(ctx context.Context, scope string) ([]string, error)
	SetRecent(ctx context.Context, scope string, ids []string) error
}

type Store interface {
	IncorrectSet
	RecentList
}
