package repositories

import (
	"context"

	"filadex/internal/logger"
	. "filadex/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrintRecordRepository interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*PrintRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*PrintRecord, error)
	Create(ctx context.Context, tx *gorm.DB, record *PrintRecord) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type printRecordRepository struct{}

func NewPrintRecordRepository() PrintRecordRepository {
	return &printRecordRepository{}
}

// UUIDv7 keys sort in creation order, which keeps usages in the order the
// record listed them.
func preloadUsagesInOrder(tx *gorm.DB) *gorm.DB {
	return tx.Order("id ASC")
}

func (r *printRecordRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*PrintRecord, error) {
	log := logger.NewWithContext(ctx, "printRecordRepository").Function("GetAll")

	var records []*PrintRecord
	if err := tx.WithContext(ctx).
		Preload("Usages", preloadUsagesInOrder).
		Order("printed_at DESC, created_at DESC").
		Find(&records).Error; err != nil {
		return nil, log.Err("failed to get print records", err)
	}

	return records, nil
}

func (r *printRecordRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
) (*PrintRecord, error) {
	log := logger.NewWithContext(ctx, "printRecordRepository").Function("GetByID")

	var record PrintRecord
	if err := tx.WithContext(ctx).
		Preload("Usages", preloadUsagesInOrder).
		Where("id = ?", id).
		First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, log.Err("failed to get print record", err, "recordID", id)
	}

	return &record, nil
}

func (r *printRecordRepository) Create(ctx context.Context, tx *gorm.DB, record *PrintRecord) error {
	log := logger.NewWithContext(ctx, "printRecordRepository").Function("Create")

	if err := tx.WithContext(ctx).Create(record).Error; err != nil {
		return log.Err("failed to create print record", err, "modelName", record.ModelName)
	}

	log.Info(
		"Print record created",
		"recordID", record.ID,
		"modelName", record.ModelName,
		"usages", len(record.Usages),
	)
	return nil
}

// Delete removes the record and its usage rows. It is bookkeeping only:
// consumed weight is never restored to the source materials.
func (r *printRecordRepository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	log := logger.NewWithContext(ctx, "printRecordRepository").Function("Delete")

	if err := tx.WithContext(ctx).
		Where("print_record_id = ?", id).
		Delete(&MaterialUsage{}).Error; err != nil {
		return log.Err("failed to delete usage entries", err, "recordID", id)
	}

	result := tx.WithContext(ctx).Where("id = ?", id).Delete(&PrintRecord{})
	if result.Error != nil {
		return log.Err("failed to delete print record", result.Error, "recordID", id)
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	log.Info("Print record deleted", "recordID", id)
	return nil
}
