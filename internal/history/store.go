package history

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"leasesync/internal/dns"
	"leasesync/internal/model"
)

const maxListLimit = 200

// Store keeps sync pass reports in MySQL
type Store struct {
	db *gorm.DB
}

// NewStore creates a history store
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record implements dns.Recorder
func (s *Store) Record(ctx context.Context, report *dns.Report) error {
	run, err := FromReport(report)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first
func (s *Store) List(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var runs []model.SyncRun
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

// FromReport converts a pass report into its audit row
func FromReport(report *dns.Report) (*model.SyncRun, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	run := &model.SyncRun{
		PassID:        report.PassID,
		DryRun:        report.DryRun,
		State:         string(report.State),
		FailedAt:      string(report.FailedAt),
		ErrorKind:     report.ErrorKind,
		StartedAt:     report.StartedAt,
		FinishedAt:    report.FinishedAt,
		LeasesFetched: report.LeasesFetched,
		Desired:       report.Desired,
		Unchanged:     report.Unchanged,
		Created:       report.Apply.Created,
		Updated:       report.Apply.Updated,
		Failed:        report.Apply.Failed,
		ReportJSON:    datatypes.JSON(data),
	}
	if report.DryRun {
		run.Created = report.Apply.WouldCreate
		run.Updated = report.Apply.WouldUpdate
	}
	if report.Error != "" {
		msg := report.Error
		if len(msg) > 1024 {
			msg = msg[:1024]
		}
		run.Error = &msg
	}
	return run, nil
}
