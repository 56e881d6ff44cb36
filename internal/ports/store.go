package ports

import "context"

// Repositories bundles the data-access interfaces that operate over one
// database handle. The recalculation engine only ever sees this bundle, so
// the same code runs against the root connection or a transaction.
type Repositories interface {
	Users() UserRepository
	Stages() StageRepository
	Logs() LogRepository
	Scores() ScoreRepository
	Categories() CategoryRepository
	Stats() StatsRepository
}

// Store is the root access point. WithinTx runs fn against tx-bound
// repositories; any error (or panic) rolls the transaction back in full, so
// a failed recompute never leaves derived rows half-applied.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}
