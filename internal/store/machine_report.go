package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"maintenance-backend/internal/model"
)

// MachineReportStatusOpen is the status given to reports created without one.
const MachineReportStatusOpen = "Open"

// MachineReportStore records reports about machine conditions.
type MachineReportStore interface {
	Create(ctx context.Context, actorID int64, in MachineReportInput) (*model.MachineReport, error)
	Get(ctx context.Context, id int64) (*model.MachineReport, error)
	List(ctx context.Context) ([]model.MachineReport, error)
}

type gormMachineReportStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewMachineReportStore creates a GORM-backed MachineReportStore.
func NewMachineReportStore(db *gorm.DB, log *zap.Logger) MachineReportStore {
	return &gormMachineReportStore{db: db, log: log}
}

func (s *gormMachineReportStore) Create(ctx context.Context, actorID int64, in MachineReportInput) (*model.MachineReport, error) {
	machine := strings.TrimSpace(in.MachineName)
	if machine == "" {
		return nil, &model.ValidationError{Field: "machine_name", Reason: "is required"}
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = MachineReportStatusOpen
	}

	report := model.MachineReport{
		UserID:      actorID,
		MachineName: machine,
		Description: in.Description,
		Status:      status,
	}
	if err := s.db.WithContext(ctx).Omit("User").Create(&report).Error; err != nil {
		return nil, unexpected(s.log, "report.Create", 0, fmt.Errorf("failed to insert machine report: %w", err))
	}

	s.log.Info("machine report created", zap.Int64("report_id", report.ID), zap.Int64("user_id", actorID))
	return s.Get(ctx, report.ID)
}

func (s *gormMachineReportStore) Get(ctx context.Context, id int64) (*model.MachineReport, error) {
	var report model.MachineReport
	if err := s.db.WithContext(ctx).Preload("User").First(&report, id).Error; err != nil {
		return nil, unexpected(s.log, "report.Get", id, notFound(err, "machine report", id))
	}
	return &report, nil
}

// List returns every report, newest first.
func (s *gormMachineReportStore) List(ctx context.Context) ([]model.MachineReport, error) {
	reports := []model.MachineReport{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Find(&reports).Error
	if err != nil {
		return nil, unexpected(s.log, "report.List", 0, err)
	}
	return reports, nil
}
