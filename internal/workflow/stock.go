package workflow

import (
	"context"

	"github.com/kdiomande/rewards-platform/internal/auth"
	"github.com/kdiomande/rewards-platform/internal/fault"
	"github.com/kdiomande/rewards-platform/internal/stock"
	"github.com/kdiomande/rewards-platform/internal/storage"
)

// StockService exposes the administrative side of the stock ledger.
type StockService struct {
	db storage.DB
}

func NewStockService(db storage.DB) *StockService {
	return &StockService{db: db}
}

// List returns every stock entry.
func (s *StockService) List(ctx context.Context, p *auth.Principal) ([]stock.Entry, error) {
	if err := auth.Authorize(p, auth.OpListStock); err != nil {
		return nil, err
	}
	return s.db.Stock().List(ctx)
}

// Restock sets the absolute available quantity for a reward, creating the
// entry if none exists. Returns the entry and whether it was created.
func (s *StockService) Restock(ctx context.Context, p *auth.Principal, rewardID, qty int64) (*stock.Entry, bool, error) {
	if err := auth.Authorize(p, auth.OpRestock); err != nil {
		return nil, false, err
	}
	if qty < 0 {
		return nil, false, fault.New(fault.InvalidArgument, "quantity must not be negative")
	}

	var entry *stock.Entry
	var created bool
	err := s.db.InTx(ctx, func(tx storage.Tx) error {
		if _, err := tx.Catalog().Reward(ctx, rewardID); err != nil {
			return err
		}
		var err error
		entry, created, err = tx.Stock().Restock(ctx, rewardID, qty)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return entry, created, nil
}

// Delete removes a stock entry by its row id.
func (s *StockService) Delete(ctx context.Context, p *auth.Principal, id int64) error {
	if err := auth.Authorize(p, auth.OpDeleteStock); err != nil {
		return err
	}
	return s.db.InTx(ctx, func(tx storage.Tx) error {
		return tx.Stock().Delete(ctx, id)
	})
}
