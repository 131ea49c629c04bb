package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kdiomande/rewards-platform/internal/catalog"
	"github.com/kdiomande/rewards-platform/internal/fault"
)

type catalogRepo struct {
	q dbtx
}

var _ catalog.Repository = (*catalogRepo)(nil)

func (r *catalogRepo) Reward(ctx context.Context, id int64) (*catalog.Reward, error) {
	const q = `
		SELECT id, label, slug, token_cost, image_url
		FROM   rewards
		WHERE  id = ?`

	var rw catalog.Reward
	err := r.q.QueryRowContext(ctx, q, id).Scan(&rw.ID, &rw.Label, &rw.Slug, &rw.TokenCost, &rw.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "reward %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get reward %d: %w", id, err)
	}
	return &rw, nil
}

func (r *catalogRepo) List(ctx context.Context) ([]catalog.Reward, error) {
	const q = `
		SELECT id, label, slug, token_cost, image_url
		FROM   rewards
		ORDER  BY id`

	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list rewards: %w", err)
	}
	defer rows.Close()

	var out []catalog.Reward
	for rows.Next() {
		var rw catalog.Reward
		if err := rows.Scan(&rw.ID, &rw.Label, &rw.Slug, &rw.TokenCost, &rw.ImageURL); err != nil {
			return nil, fmt.Errorf("sqlite: scan reward: %w", err)
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

func (r *catalogRepo) CreateReward(ctx context.Context, rw *catalog.Reward) error {
	const q = `
		INSERT INTO rewards (label, slug, token_cost, image_url)
		VALUES (?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, q, rw.Label, rw.Slug, rw.TokenCost, rw.ImageURL)
	if err != nil {
		return fmt.Errorf("sqlite: create reward %q: %w", rw.Label, err)
	}
	rw.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: create reward %q: %w", rw.Label, err)
	}
	return nil
}

func (r *catalogRepo) IsFavorite(ctx context.Context, accountID, rewardID int64) (bool, error) {
	const q = `SELECT 1 FROM favorites WHERE account_id = ? AND reward_id = ?`

	var one int
	err := r.q.QueryRowContext(ctx, q, accountID, rewardID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: check favorite: %w", err)
	}
	return true, nil
}

func (r *catalogRepo) AddFavorite(ctx context.Context, accountID, rewardID int64) error {
	const q = `
		INSERT INTO favorites (account_id, reward_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (account_id, reward_id) DO NOTHING`

	if _, err := r.q.ExecContext(ctx, q, accountID, rewardID, formatTime(time.Now())); err != nil {
		return fmt.Errorf("sqlite: add favorite: %w", err)
	}
	return nil
}

func (r *catalogRepo) RemoveFavorite(ctx context.Context, accountID, rewardID int64) error {
	const q = `DELETE FROM favorites WHERE account_id = ? AND reward_id = ?`

	if _, err := r.q.ExecContext(ctx, q, accountID, rewardID); err != nil {
		return fmt.Errorf("sqlite: remove favorite: %w", err)
	}
	return nil
}

func (r *catalogRepo) ListFavorites(ctx context.Context, accountID int64) ([]catalog.Reward, error) {
	const q = `
		SELECT r.id, r.label, r.slug, r.token_cost, r.image_url
		FROM   favorites f
		JOIN   rewards r ON r.id = f.reward_id
		WHERE  f.account_id = ?
		ORDER  BY f.created_at`

	rows, err := r.q.QueryContext(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list favorites: %w", err)
	}
	defer rows.Close()

	var out []catalog.Reward
	for rows.Next() {
		var rw catalog.Reward
		if err := rows.Scan(&rw.ID, &rw.Label, &rw.Slug, &rw.TokenCost, &rw.ImageURL); err != nil {
			return nil, fmt.Errorf("sqlite: scan favorite: %w", err)
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}
