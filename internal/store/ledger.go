package store

import (
	"fmt"

	"gorm.io/gorm"

	"maintenance-backend/internal/metrics"
	"maintenance-backend/internal/model"
)

// Ledger applies stock movements to spare parts inside a caller-owned transaction.
type Ledger interface {
	// Adjust adds delta to the spare part's quantity and returns the quantity left.
	// A negative delta larger than the stock on hand fails with model.InsufficientStockError.
	Adjust(tx *gorm.DB, sparePartID int64, delta int) (int, error)
}

type gormLedger struct {
	metrics *metrics.Metrics
}

// NewLedger creates a Ledger. m may be nil.
func NewLedger(m *metrics.Metrics) Ledger {
	return &gormLedger{metrics: m}
}

// Adjust relies on a single conditional UPDATE: the row lock it takes makes concurrent
// consumers of the same part queue up, and the stock predicate is re-checked once they run.
func (l *gormLedger) Adjust(tx *gorm.DB, sparePartID int64, delta int) (int, error) {
	var affected int64
	if delta != 0 {
		q := tx.Model(&model.SparePart{}).Where("id = ?", sparePartID)
		if delta < 0 {
			q = q.Where("quantity >= ?", -delta)
		}
		res := q.Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return 0, fmt.Errorf("failed to adjust stock of spare part %d: %w", sparePartID, res.Error)
		}
		affected = res.RowsAffected
	}

	var part model.SparePart
	if err := tx.Select("id", "quantity").First(&part, sparePartID).Error; err != nil {
		return 0, notFound(err, "spare part", sparePartID)
	}

	if delta != 0 && affected == 0 {
		return part.Quantity, &model.InsufficientStockError{
			SparePartID: sparePartID,
			Available:   part.Quantity,
			Requested:   -delta,
		}
	}

	l.metrics.StockAdjusted(delta)
	return part.Quantity, nil
}
