package repository

import (
	"database/sql"
	"log/slog"
)

// DBTX is the subset of database/sql methods shared by *sql.DB and *sql.Tx,
// so every repository method can run standalone or inside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store bundles the per-entity repositories behind one storage boundary.
// InTx runs fn against a transactional view of the store; multi-entity
// writes that must be atomic go through it. InSavepoint runs fn inside a
// savepoint so a failed fn can be discarded without aborting the enclosing
// transaction.
type Store interface {
	Reviewers() ReviewerStore
	Assignments() AssignmentStore
	Reviews() ReviewStore
	Answers() AnswerStore
	Questions() QuestionStore
	Blind() BlindStore
	InTx(fn func(Store) error) error
	InSavepoint(fn func(Store) error) error
}

// SQLStore implements Store on top of Postgres
type SQLStore struct {
	db *sql.DB
	q  DBTX
}

// NewStore creates a store backed by the given database handle
func NewStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, q: db}
}

// Reviewers returns the reviewer profile repository
func (s *SQLStore) Reviewers() ReviewerStore {
	return &ReviewerRepository{q: s.q}
}

// Assignments returns the assignment repository
func (s *SQLStore) Assignments() AssignmentStore {
	return &AssignmentRepository{q: s.q}
}

// Reviews returns the review repository
func (s *SQLStore) Reviews() ReviewStore {
	return &ReviewRepository{q: s.q}
}

// Answers returns the answer repository
func (s *SQLStore) Answers() AnswerStore {
	return &AnswerRepository{q: s.q}
}

// Questions returns the question repository
func (s *SQLStore) Questions() QuestionStore {
	return &QuestionRepository{q: s.q}
}

// Blind returns the blind assignment/ranking repository
func (s *SQLStore) Blind() BlindStore {
	return &BlindReviewRepository{q: s.q}
}

// InTx runs fn inside a database transaction. Calling InTx on a store that is
// already transactional joins the existing transaction instead of nesting.
func (s *SQLStore) InTx(fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	// Rollback only if not committed
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	if err := fn(&SQLStore{db: s.db, q: tx}); err != nil {
		return err
	}

	return tx.Commit()
}

// InSavepoint runs fn inside a savepoint on the current transaction. When fn
// fails, the savepoint is rolled back so the enclosing transaction stays
// usable; Postgres otherwise refuses further statements after any error.
// Outside a transaction this is just InTx.
func (s *SQLStore) InSavepoint(fn func(Store) error) error {
	if _, ok := s.q.(*sql.Tx); !ok {
		return s.InTx(fn)
	}

	if _, err := s.q.Exec("SAVEPOINT store_savepoint"); err != nil {
		return err
	}

	if err := fn(s); err != nil {
		if _, rbErr := s.q.Exec("ROLLBACK TO SAVEPOINT store_savepoint"); rbErr != nil {
			slog.Error("Failed to roll back to savepoint", "error", rbErr)
			return rbErr
		}
		return err
	}

	_, err := s.q.Exec("RELEASE SAVEPOINT store_savepoint")
	return err
}
