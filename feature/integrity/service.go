package integrity

import (
	"context"
	"fmt"

	"figure-sync/core/storage"
	"figure-sync/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client     storage.Client
	bucket     string
	folders    []string
	db         *gorm.DB
	geomColumn string
	logger     *zap.Logger
}

// NewService creates a new integrity service. client may be nil when
// storage is disabled.
func NewService(client storage.Client, bucket string, db *gorm.DB, geomColumn string, logger *zap.Logger) *Service {
	return &Service{
		client:     client,
		bucket:     bucket,
		folders:    checks.RequiredFolders,
		db:         db,
		geomColumn: geomColumn,
		logger:     logger,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage is not enabled")
	}
	return checks.CheckStructure(ctx, s.client, s.bucket, s.folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return fmt.Errorf("storage is not enabled")
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckSchema compares the live tables with reqs.
func (s *Service) CheckSchema(reqs []checks.Requirement) (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, s.geomColumn, reqs)
}
