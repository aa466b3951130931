package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/pr-warden/internal/core"
)

// Store defines the interface for all database operations.
type Store interface {
	SaveEvaluation(ctx context.Context, eval *core.Evaluation) error
	GetLatestEvaluationForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Evaluation, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a new Store
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveEvaluation inserts a new evaluation record into the database.
func (s *postgresStore) SaveEvaluation(ctx context.Context, eval *core.Evaluation) error {
	query := `INSERT INTO evaluations (repo_full_name, pr_number, head_sha, title_accepted, title_reason, labels_added, labels_removed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		eval.RepoFullName, eval.PRNumber, eval.HeadSHA,
		eval.TitleAccepted, eval.TitleReason,
		eval.LabelsAdded, eval.LabelsRemoved, time.Now())
	return err
}

// GetLatestEvaluationForPR retrieves the most recent evaluation for a given pull request.
func (s *postgresStore) GetLatestEvaluationForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Evaluation, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, title_accepted, title_reason, labels_added, labels_removed, created_at
		FROM evaluations
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var eval core.Evaluation
	err := s.db.GetContext(ctx, &eval, query, repoFullName, prNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no previous evaluation found for PR %s#%d", repoFullName, prNumber)
		}
		return nil, err
	}
	return &eval, nil
}
