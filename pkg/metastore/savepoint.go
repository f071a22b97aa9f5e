package metastore

import (
	"gorm.io/gorm"

	"github.com/cryptobox/cryptobox/internal/logger"
)

// nextSavepointName advances the per-connection lowercase-letter counter:
// "", "a", "b", ..., "z", "aa", "ab", .... Ported from the original
// TransactionGuard.cpp::CreateNewSavepointName algorithm (increment the
// last letter, carrying into the letter before it at 'z'; when every
// letter is 'z', the name grows by one letter).
func nextSavepointName(prev string) string {
	b := []byte(prev)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 'z' {
			b[i]++
			return string(b)
		}
		b[i] = 'a'
	}
	return "a" + string(b)
}

// Savepoint is a scoped transaction: it is released (committed) or rolled
// back exactly once. A handle that is never released must be rolled back
// explicitly — callers should `defer sp.Rollback()` immediately after
// acquiring one and call Release() on the success path; a Rollback after a
// successful Release is a silent no-op.
type Savepoint struct {
	tx       *gorm.DB
	name     string
	resolved bool
}

// BeginSavepoint starts a new transaction on this *Store's connection and
// immediately issues a uniquely-named SAVEPOINT inside it. Every call opens
// its own transaction: a Savepoint is never nested inside another
// Savepoint's transaction. The name is generated from this Store's private
// counter under a mutex, per spec.md §4.1.
func (s *Store) BeginSavepoint() (*Savepoint, error) {
	s.nameMu.Lock()
	s.lastName = nextSavepointName(s.lastName)
	name := s.lastName
	s.nameMu.Unlock()

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, MapError(tx.Error)
	}
	if err := tx.SavePoint(name).Error; err != nil {
		tx.Rollback()
		return nil, MapError(err)
	}
	return &Savepoint{tx: tx, name: name}, nil
}

// Tx exposes the underlying *gorm.DB so callers can run statements within
// the savepoint's scope.
func (sp *Savepoint) Tx() *gorm.DB {
	return sp.tx
}

// Release commits the savepoint (RELEASE SAVEPOINT) and the outer
// transaction. Safe to call only once; a second call is a no-op.
func (sp *Savepoint) Release() error {
	if sp.resolved {
		return nil
	}
	sp.resolved = true
	if err := sp.tx.Exec("RELEASE SAVEPOINT " + sp.name + ";").Error; err != nil {
		sp.tx.Rollback()
		return MapError(err)
	}
	return MapError(sp.tx.Commit().Error)
}

// Rollback rolls the savepoint back (ROLLBACK TO SAVEPOINT) and then rolls
// back the outer transaction, discarding every statement issued since
// BeginSavepoint. Errors raised while rolling back are logged at Warn and
// not returned to the caller per spec.md §4.1 (destructor safety), so
// Rollback always returns nil.
func (sp *Savepoint) Rollback() error {
	if sp.resolved {
		return nil
	}
	sp.resolved = true
	if err := sp.tx.RollbackTo(sp.name).Error; err != nil {
		logger.Warn("rollback to savepoint failed", "savepoint", sp.name, "error", err)
	}
	if err := sp.tx.Rollback().Error; err != nil {
		logger.Warn("rollback of savepoint transaction failed", "savepoint", sp.name, "error", err)
	}
	return nil
}
