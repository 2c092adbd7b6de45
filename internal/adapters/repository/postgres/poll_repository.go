package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/askus/askus/internal/core/domain"
	"github.com/askus/askus/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) CreatePoll(ctx context.Context, question string) (*domain.Poll, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The previous poll stops accepting votes the moment its replacement
	// exists, so both changes commit together.
	closeQuery := `
		UPDATE polls SET closed_at = NOW() WHERE closed_at IS NULL
	`
	if _, err := tx.ExecContext(ctx, closeQuery); err != nil {
		return nil, fmt.Errorf("failed to close previous poll: %w", err)
	}

	insertQuery := `
		INSERT INTO polls (question)
		VALUES ($1)
		RETURNING id, question, created_at, closed_at
	`
	var poll domain.Poll
	err = tx.QueryRowContext(ctx, insertQuery, question).Scan(
		&poll.ID, &poll.Question, &poll.CreatedAt, &poll.ClosedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &poll, nil
}

func (r *pollRepository) GetPoll(ctx context.Context, id int64) (*domain.Poll, error) {
	query := `
		SELECT id, question, created_at, closed_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&poll.ID, &poll.Question, &poll.CreatedAt, &poll.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return &poll, nil
}

func (r *pollRepository) RecordVote(ctx context.Context, vote *domain.Vote) (bool, error) {
	// ON CONFLICT DO NOTHING makes the at-most-one-vote check atomic:
	// of several concurrent inserts for the same (poll, user hash) exactly
	// one row lands, the rest report zero rows affected.
	query := `
		INSERT INTO votes (id, poll_id, user_hash, option)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, user_hash) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, vote.ID, vote.PollID, vote.UserHash, vote.Option)
	if err != nil {
		return false, fmt.Errorf("failed to record vote: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected == 1, nil
}

func (r *pollRepository) Totals(ctx context.Context, pollID int64) (domain.Totals, error) {
	query := `
		SELECT option, COUNT(*)
		FROM votes
		WHERE poll_id = $1
		GROUP BY option
		ORDER BY option ASC
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get totals: %w", err)
	}
	defer rows.Close()

	totals := make(domain.Totals)
	for rows.Next() {
		var option string
		var count int64
		if err := rows.Scan(&option, &count); err != nil {
			return nil, fmt.Errorf("failed to scan totals: %w", err)
		}
		totals[option] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating totals: %w", err)
	}

	return totals, nil
}
