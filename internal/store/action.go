package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"maintenance-backend/internal/filestore"
	"maintenance-backend/internal/model"
)

// ActionStore persists repair actions and keeps spare part stock in step with them.
type ActionStore interface {
	Create(ctx context.Context, actorID int64, in ActionInput, files []Attachment) (*model.Action, error)
	Update(ctx context.Context, actorID, id int64, in ActionInput, files []Attachment) (*model.Action, error)
	Delete(ctx context.Context, actorID, id int64) error
	Get(ctx context.Context, id int64) (*model.Action, error)
	List(ctx context.Context) ([]model.Action, error)
	ListByMachineReport(ctx context.Context, reportID int64) ([]model.Action, error)
	ListByTechnician(ctx context.Context, technicianID int64) ([]model.Action, error)
	ListByStatus(ctx context.Context, status model.ActionStatus) ([]model.Action, error)
}

// ActionStoreConfig holds the tunables of the action store.
type ActionStoreConfig struct {
	ImageDir          string
	LowStockThreshold int
}

type gormActionStore struct {
	db     *gorm.DB
	ledger Ledger
	files  filestore.FileStore
	alerts StockAlerter
	log    *zap.Logger
	cfg    ActionStoreConfig
}

// NewActionStore creates a GORM-backed ActionStore. alerts may be nil.
func NewActionStore(db *gorm.DB, ledger Ledger, files filestore.FileStore, alerts StockAlerter, log *zap.Logger, cfg ActionStoreConfig) ActionStore {
	return &gormActionStore{
		db:     db,
		ledger: ledger,
		files:  files,
		alerts: alerts,
		log:    log,
		cfg:    cfg,
	}
}

// Create records a new action performed by actorID, consumes its spare part quantity
// and stores the attached images, all in one transaction.
func (s *gormActionStore) Create(ctx context.Context, actorID int64, in ActionInput, files []Attachment) (*model.Action, error) {
	const op = "action.Create"

	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		actionID int64
		saved    []string
	)
	stock := stockLevels{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.SparePartID != nil {
			if err := ensureSparePart(tx, *in.SparePartID); err != nil {
				return err
			}
		}

		action := model.Action{
			Status:       in.Status,
			Description:  in.Description,
			Date:         in.Date,
			TechnicianID: actorID,
			SparePartID:  in.SparePartID,
			Quantity:     in.quantity(),
		}
		if err := tx.Omit(clause.Associations).Create(&action).Error; err != nil {
			return fmt.Errorf("failed to insert action: %w", err)
		}
		actionID = action.ID

		if action.SparePartID != nil && action.Quantity > 0 {
			left, err := s.ledger.Adjust(tx, *action.SparePartID, -action.Quantity)
			if err != nil {
				return err
			}
			stock.record(*action.SparePartID, left)
		}

		if len(in.MachineReportIDs) > 0 {
			if err := replaceMachineReports(tx, &action, in.MachineReportIDs); err != nil {
				return err
			}
		}

		var err error
		saved, err = s.attachImages(ctx, tx, action.ID, files)
		return err
	})
	if err != nil {
		s.discardFiles(ctx, saved)
		return nil, unexpected(s.log, op, actionID, err)
	}

	s.log.Info("action created",
		zap.Int64("action_id", actionID),
		zap.Int64("technician_id", actorID),
		zap.Int("images", len(saved)))
	s.alertLowStock(stock)

	return s.Get(ctx, actionID)
}

// Update rewrites an action and moves its stock consumption from the old spare part and
// quantity to the new ones. The technician stays the one who created the action.
func (s *gormActionStore) Update(ctx context.Context, actorID, id int64, in ActionInput, files []Attachment) (*model.Action, error) {
	const op = "action.Update"

	if err := in.validate(); err != nil {
		return nil, err
	}

	var saved []string
	stock := stockLevels{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var action model.Action
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&action, id).Error; err != nil {
			return notFound(err, "action", id)
		}

		newPartID, newQty := in.SparePartID, in.quantity()
		if newPartID != nil {
			if err := ensureSparePart(tx, *newPartID); err != nil {
				return err
			}
		}
		if err := s.reconcileStock(tx, action.SparePartID, action.Quantity, newPartID, newQty, stock); err != nil {
			return err
		}

		action.Status = in.Status
		action.Description = in.Description
		action.Date = in.Date
		action.SparePartID = newPartID
		action.Quantity = newQty
		if err := tx.Model(&action).Updates(map[string]any{
			"status":        in.Status,
			"description":   in.Description,
			"date":          in.Date,
			"spare_part_id": newPartID,
			"quantity":      newQty,
		}).Error; err != nil {
			return fmt.Errorf("failed to update action %d: %w", id, err)
		}

		if in.MachineReportIDs != nil {
			if err := replaceMachineReports(tx, &action, in.MachineReportIDs); err != nil {
				return err
			}
		}

		var err error
		saved, err = s.attachImages(ctx, tx, action.ID, files)
		return err
	})
	if err != nil {
		s.discardFiles(ctx, saved)
		return nil, unexpected(s.log, op, id, err)
	}

	s.log.Info("action updated",
		zap.Int64("action_id", id),
		zap.Int64("actor_id", actorID),
		zap.Int("images", len(saved)))
	s.alertLowStock(stock)

	return s.Get(ctx, id)
}

// reconcileStock restores what the old state consumed and charges the new state.
// The old part is always credited before the new part is debited.
func (s *gormActionStore) reconcileStock(tx *gorm.DB, oldPart *int64, oldQty int, newPart *int64, newQty int, stock stockLevels) error {
	if oldPart != nil && newPart != nil && *oldPart == *newPart {
		delta := oldQty - newQty
		if delta == 0 {
			return nil
		}
		left, err := s.ledger.Adjust(tx, *newPart, delta)
		if err != nil {
			return err
		}
		if delta < 0 {
			stock.record(*newPart, left)
		}
		return nil
	}

	if oldPart != nil && oldQty > 0 {
		if _, err := s.ledger.Adjust(tx, *oldPart, oldQty); err != nil {
			return err
		}
	}

	if newPart != nil && newQty > 0 {
		left, err := s.ledger.Adjust(tx, *newPart, -newQty)
		if err != nil {
			return err
		}
		stock.record(*newPart, left)
	}
	return nil
}

// Delete removes an action and gives its consumed quantity back to the spare part.
// Image files are removed from storage only after the transaction commits.
func (s *gormActionStore) Delete(ctx context.Context, actorID, id int64) error {
	const op = "action.Delete"

	var images []model.ActionImage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var action model.Action
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&action, id).Error; err != nil {
			return notFound(err, "action", id)
		}

		if action.SparePartID != nil && action.Quantity > 0 {
			if _, err := s.ledger.Adjust(tx, *action.SparePartID, action.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Model(&action).Association("MachineReports").Clear(); err != nil {
			return fmt.Errorf("failed to unlink machine reports of action %d: %w", id, err)
		}

		if err := tx.Where("action_id = ?", id).Find(&images).Error; err != nil {
			return fmt.Errorf("failed to load images of action %d: %w", id, err)
		}
		if err := tx.Where("action_id = ?", id).Delete(&model.ActionImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete images of action %d: %w", id, err)
		}

		if err := tx.Delete(&action).Error; err != nil {
			return fmt.Errorf("failed to delete action %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return unexpected(s.log, op, id, err)
	}

	refs := make([]string, 0, len(images))
	for _, img := range images {
		refs = append(refs, img.FilePath)
	}
	s.discardFiles(ctx, refs)

	s.log.Info("action deleted", zap.Int64("action_id", id), zap.Int64("actor_id", actorID))
	return nil
}

// Get returns one action with its technician, spare part, machine reports and images.
func (s *gormActionStore) Get(ctx context.Context, id int64) (*model.Action, error) {
	var action model.Action
	if err := s.withAssociations(ctx).Preload("Images").First(&action, id).Error; err != nil {
		return nil, unexpected(s.log, "action.Get", id, notFound(err, "action", id))
	}
	return &action, nil
}

// List returns every action, newest first.
func (s *gormActionStore) List(ctx context.Context) ([]model.Action, error) {
	return s.list(ctx, "action.List", 0, func(q *gorm.DB) *gorm.DB { return q })
}

// ListByMachineReport returns the actions linked to a machine report, newest first.
func (s *gormActionStore) ListByMachineReport(ctx context.Context, reportID int64) ([]model.Action, error) {
	return s.list(ctx, "action.ListByMachineReport", reportID, func(q *gorm.DB) *gorm.DB {
		return q.Joins("JOIN action_machine_reports amr ON amr.action_id = actions.id").
			Where("amr.machine_report_id = ?", reportID)
	})
}

// ListByTechnician returns the actions performed by a user, newest first.
func (s *gormActionStore) ListByTechnician(ctx context.Context, technicianID int64) ([]model.Action, error) {
	return s.list(ctx, "action.ListByTechnician", technicianID, func(q *gorm.DB) *gorm.DB {
		return q.Where("actions.technician_id = ?", technicianID)
	})
}

// ListByStatus returns the actions in the given status, newest first.
func (s *gormActionStore) ListByStatus(ctx context.Context, status model.ActionStatus) ([]model.Action, error) {
	if !status.Valid() {
		return nil, &model.ValidationError{Field: "status", Reason: "must be one of Pending, In Progress, Completed"}
	}
	return s.list(ctx, "action.ListByStatus", 0, func(q *gorm.DB) *gorm.DB {
		return q.Where("actions.status = ?", status)
	})
}

func (s *gormActionStore) list(ctx context.Context, op string, id int64, scope func(*gorm.DB) *gorm.DB) ([]model.Action, error) {
	actions := []model.Action{}
	err := scope(s.withAssociations(ctx)).
		Order("actions.created_at DESC").
		Order("actions.id DESC").
		Find(&actions).Error
	if err != nil {
		return nil, unexpected(s.log, op, id, err)
	}
	return actions, nil
}

func (s *gormActionStore) withAssociations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Technician").
		Preload("SparePart").
		Preload("MachineReports")
}

func ensureSparePart(tx *gorm.DB, id int64) error {
	if err := tx.Select("id").First(&model.SparePart{}, id).Error; err != nil {
		return notFound(err, "spare part", id)
	}
	return nil
}

// replaceMachineReports links exactly the given reports to the action.
func replaceMachineReports(tx *gorm.DB, action *model.Action, ids []int64) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		if err := tx.Model(action).Association("MachineReports").Clear(); err != nil {
			return fmt.Errorf("failed to unlink machine reports of action %d: %w", action.ID, err)
		}
		return nil
	}

	var reports []model.MachineReport
	if err := tx.Where("id IN ?", ids).Find(&reports).Error; err != nil {
		return fmt.Errorf("failed to load machine reports: %w", err)
	}
	if len(reports) != len(ids) {
		found := make(map[int64]struct{}, len(reports))
		for _, r := range reports {
			found[r.ID] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return &model.NotFoundError{Entity: "machine report", ID: id}
			}
		}
	}

	if err := tx.Model(action).Association("MachineReports").Replace(&reports); err != nil {
		return fmt.Errorf("failed to link machine reports to action %d: %w", action.ID, err)
	}
	return nil
}

// attachImages stores each attachment and records it against the action. The returned
// references include files saved before a failure so the caller can remove them.
func (s *gormActionStore) attachImages(ctx context.Context, tx *gorm.DB, actionID int64, files []Attachment) ([]string, error) {
	saved := make([]string, 0, len(files))
	for _, f := range files {
		ref, err := s.files.Save(ctx, s.cfg.ImageDir, f.Filename, f.Content)
		if err != nil {
			return saved, fmt.Errorf("failed to store image %q: %w", f.Filename, err)
		}
		saved = append(saved, ref)

		if err := tx.Create(&model.ActionImage{ActionID: actionID, FilePath: ref}).Error; err != nil {
			return saved, fmt.Errorf("failed to record image %s: %w", ref, err)
		}
	}
	return saved, nil
}

// discardFiles removes stored files on a best-effort basis.
func (s *gormActionStore) discardFiles(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.files.Delete(context.WithoutCancel(ctx), ref); err != nil {
			s.log.Warn("failed to remove stored image", zap.String("path", ref), zap.Error(err))
		}
	}
}

func (s *gormActionStore) alertLowStock(stock stockLevels) {
	if s.alerts == nil {
		return
	}
	for partID, left := range stock {
		if left <= s.cfg.LowStockThreshold {
			s.log.Info("spare part stock is low", zap.Int64("spare_part_id", partID), zap.Int("quantity", left))
			s.alerts.Dispatch(partID)
		}
	}
}
