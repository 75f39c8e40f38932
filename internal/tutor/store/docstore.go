package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/redfire-io/pcb-tutor/internal/model"
)

// DatasetStore tracks indexed textbook sources in SQLite. The vector store
// holds the chunks; this registry remembers where they came from so repeat
// indexing of the same source can be detected.
type DatasetStore struct {
	db *gorm.DB
}

// NewDatasetStore opens (or creates) the SQLite database at dataDir and
// migrates the schema. Pass ":memory:" as dataDir for an ephemeral store.
func NewDatasetStore(dataDir string) (*DatasetStore, error) {
	dsn := ":memory:"
	if dataDir != ":memory:" {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		dsn = filepath.Join(dataDir, "datasets.db")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset db: %w", err)
	}

	if err := db.AutoMigrate(&model.Dataset{}); err != nil {
		return nil, fmt.Errorf("failed to migrate dataset schema: %w", err)
	}

	return &DatasetStore{db: db}, nil
}

// Create inserts a dataset record.
func (s *DatasetStore) Create(ctx context.Context, ds *model.Dataset) error {
	return s.db.WithContext(ctx).Create(ds).Error
}

// SetStatus updates a dataset's status, chunk count, and error message.
func (s *DatasetStore) SetStatus(ctx context.Context, id, status string, chunkNum int, errMsg string) error {
	return s.db.WithContext(ctx).Model(&model.Dataset{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    status,
			"chunk_num": chunkNum,
			"error":     errMsg,
		}).Error
}

// Get returns a dataset by ID.
func (s *DatasetStore) Get(ctx context.Context, id string) (*model.Dataset, error) {
	var ds model.Dataset
	if err := s.db.WithContext(ctx).First(&ds, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ds, nil
}

// FindByHash returns the dataset with the given subject and content hash,
// or nil when the source has not been indexed before.
func (s *DatasetStore) FindByHash(ctx context.Context, subject model.Subject, hash string) (*model.Dataset, error) {
	var ds model.Dataset
	err := s.db.WithContext(ctx).
		Where("subject = ? AND hash = ?", subject.String(), hash).
		First(&ds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// List returns datasets, optionally filtered by subject, newest first.
func (s *DatasetStore) List(ctx context.Context, subject model.Subject) ([]model.Dataset, error) {
	var datasets []model.Dataset
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if subject != "" {
		q = q.Where("subject = ?", subject.String())
	}
	if err := q.Find(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

// Close closes the underlying database connection.
func (s *DatasetStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
