// Package store holds the GORM-backed persistence layer. Every mutation that touches
// more than one row runs inside a single transaction.
package store

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-backend/internal/filestore"
	"maintenance-backend/internal/metrics"
)

// Store bundles the stores that share one database connection.
type Store struct {
	db *gorm.DB

	Ledger         Ledger
	Actions        ActionStore
	Users          UserStore
	SpareParts     SparePartStore
	MachineReports MachineReportStore
	Subscriptions  SubscriptionStore
}

// Options configures NewGormStore.
type Options struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Files   filestore.FileStore
	// Alerts receives spare parts that dropped to the low-stock threshold. May be nil.
	Alerts StockAlerter
	Action ActionStoreConfig
}

// NewGormStore creates every GORM-backed store.
func NewGormStore(db *gorm.DB, opts Options) *Store {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	ledger := NewLedger(opts.Metrics)

	return &Store{
		db:             db,
		Ledger:         ledger,
		Actions:        NewActionStore(db, ledger, opts.Files, opts.Alerts, log, opts.Action),
		Users:          NewUserStore(db, log),
		SpareParts:     NewSparePartStore(db, log),
		MachineReports: NewMachineReportStore(db, log),
		Subscriptions:  NewSubscriptionStore(db, log),
	}
}

// DB returns the underlying database handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}
