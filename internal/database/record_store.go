package database

import (
	"context"
	"errors"

	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/records"
	"gorm.io/gorm"
)

// RecordStore persists document records with GORM.
// Soft delete relies on gorm.DeletedAt; deleted rows are reached with Unscoped.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore creates a store on top of an open connection
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Insert stores a new record and returns its id
func (s *RecordStore) Insert(ctx context.Context, rec *models.DocumentRecord) (uint, error) {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, &records.StoreError{Op: "insert", Err: err}
	}
	return rec.ID, nil
}

// ListActive returns the records without deletion mark, oldest first
func (s *RecordStore) ListActive(ctx context.Context) ([]models.DocumentRecord, error) {
	var recs []models.DocumentRecord
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&recs).Error; err != nil {
		return nil, &records.StoreError{Op: "list active", Err: err}
	}
	return recs, nil
}

// ListDeleted returns the soft-deleted records, oldest first
func (s *RecordStore) ListDeleted(ctx context.Context) ([]models.DocumentRecord, error) {
	var recs []models.DocumentRecord
	err := s.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, &records.StoreError{Op: "list deleted", Err: err}
	}
	return recs, nil
}

// GetByID finds a record whether or not it is deleted
func (s *RecordStore) GetByID(ctx context.Context, id uint) (*models.DocumentRecord, error) {
	var rec models.DocumentRecord
	err := s.db.WithContext(ctx).Unscoped().First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, records.ErrNotFound
	}
	if err != nil {
		return nil, &records.StoreError{Op: "get", Err: err}
	}
	return &rec, nil
}

// SoftDelete sets deleted_at on an active record
func (s *RecordStore) SoftDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.DocumentRecord{}, id)
	return affected(res, "soft delete")
}

// Restore clears deleted_at on a deleted record
func (s *RecordStore) Restore(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().
		Model(&models.DocumentRecord{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	return affected(res, "restore")
}

// PermanentlyDelete removes the row of a deleted record
func (s *RecordStore) PermanentlyDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL").
		Delete(&models.DocumentRecord{}, id)
	return affected(res, "permanent delete")
}

// CountByStatus returns how many records are active and deleted
func (s *RecordStore) CountByStatus(ctx context.Context) (active, deleted int64, err error) {
	db := s.db.WithContext(ctx)
	if err = db.Model(&models.DocumentRecord{}).Count(&active).Error; err != nil {
		return 0, 0, &records.StoreError{Op: "count", Err: err}
	}
	err = db.Unscoped().Model(&models.DocumentRecord{}).Where("deleted_at IS NOT NULL").Count(&deleted).Error
	if err != nil {
		return 0, 0, &records.StoreError{Op: "count", Err: err}
	}
	return active, deleted, nil
}

func affected(res *gorm.DB, op string) error {
	if res.Error != nil {
		return &records.StoreError{Op: op, Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return records.ErrNotFound
	}
	return nil
}
