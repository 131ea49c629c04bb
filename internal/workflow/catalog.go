package workflow

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/catalog"
	"github.com/kdiomande/rewards-platform/internal/pkg/cache"
	"github.com/kdiomande/rewards-platform/internal/storage"
)

// catalogTTL bounds how stale the cached reward list may get. The catalog is
// edited rarely and only by administration.
const catalogTTL = 5 * time.Minute

// CatalogService serves the reward catalog and per-account favorites.
type CatalogService struct {
	db    storage.DB
	cache cache.Cache // nil-safe: caching skipped if nil
}

// NewCatalogService builds the service. cache may be nil, in which case every
// listing hits the store.
func NewCatalogService(db storage.DB, c cache.Cache) *CatalogService {
	return &CatalogService{db: db, cache: c}
}

// ListRewards returns the catalog sorted by category tier, optionally
// filtered to one category name. The unfiltered list is served read-through
// from the cache.
func (s *CatalogService) ListRewards(ctx context.Context, p *auth.Principal, category string) ([]catalog.Reward, error) {
	if err := auth.Authorize(p, auth.OpListRewards); err != nil {
		return nil, err
	}

	rewards, err := s.loadRewards(ctx)
	if err != nil {
		return nil, err
	}

	if category != "" {
		filtered := rewards[:0:0]
		for _, r := range rewards {
			if r.Category() == category {
				filtered = append(filtered, r)
			}
		}
		rewards = filtered
	}

	sort.SliceStable(rewards, func(i, j int) bool {
		return rewards[i].Category() < rewards[j].Category()
	})
	return rewards, nil
}

func (s *CatalogService) loadRewards(ctx context.Context) ([]catalog.Reward, error) {
	var key string
	if s.cache != nil {
		key = s.cache.GenerateKey("rewards", "all")
		raw, err := s.cache.Get(ctx, key)
		if err != nil {
			// A cache outage must not take the catalog down.
			slog.WarnContext(ctx, "rewards cache read failed", "error", err)
		} else if raw != "" {
			var cached []catalog.Reward
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	rewards, err := s.db.Catalog().List(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(rewards); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), catalogTTL); err != nil {
				slog.WarnContext(ctx, "rewards cache write failed", "error", err)
			}
		}
	}
	return rewards, nil
}

// ToggleFavorite pins the reward for the principal, or unpins it if already
// pinned. Returns true when the reward ended up pinned.
func (s *CatalogService) ToggleFavorite(ctx context.Context, p *auth.Principal, rewardID int64) (bool, error) {
	if err := auth.Authorize(p, auth.OpToggleFavorite); err != nil {
		return false, err
	}

	var added bool
	err := s.db.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.Catalog().Reward(ctx, rewardID); err != nil {
			return err
		}
		pinned, err := tx.Catalog().IsFavorite(ctx, p.AccountID, rewardID)
		if err != nil {
			return err
		}
		if pinned {
			return tx.Catalog().RemoveFavorite(ctx, p.AccountID, rewardID)
		}
		added = true
		return tx.Catalog().AddFavorite(ctx, p.AccountID, rewardID)
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// ListFavorites returns the rewards the principal has pinned.
func (s *CatalogService) ListFavorites(ctx context.Context, p *auth.Principal) ([]catalog.Reward, error) {
	if err := auth.Authorize(p, auth.OpListFavorites); err != nil {
		return nil, err
	}
	return s.db.Catalog().ListFavorites(ctx, p.AccountID)
}
