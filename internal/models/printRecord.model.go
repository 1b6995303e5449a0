package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrintRecord is a logged consumption event. Single-material records use the
// legacy flat columns; multi-material records carry an ordered usage list.
// When usages are present they are authoritative, mirroring the gradient
// stop rule on Material.
//
// Material references are weak: the name snapshot keeps the record legible
// after the source material is renamed or deleted, and cost is always
// recomputed from the live material state, never stored here.
type PrintRecord struct {
	BaseUUIDModel
	ModelName string    `gorm:"type:text;not null"            json:"modelName"`
	Link      *string   `gorm:"type:text"                     json:"link,omitempty"`
	PrintedAt time.Time `gorm:"type:timestamp;not null;index" json:"printedAt"`

	// Legacy single-material shape
	MaterialID      *uuid.UUID `gorm:"type:uuid;index" json:"materialId,omitempty"`
	MaterialName    *string    `gorm:"type:text"       json:"materialName,omitempty"`
	WeightUsedGrams *float64   `gorm:"type:real"       json:"weightUsedGrams,omitempty"`

	Usages []MaterialUsage `gorm:"foreignKey:PrintRecordID" json:"usages,omitempty"`
}

// MaterialUsage is one (material, weight) pair within a multi-material
// record. MaterialID is a back-reference without a foreign key constraint so
// deleting the material orphans, not invalidates, the row.
type MaterialUsage struct {
	BaseUUIDModel
	PrintRecordID   uuid.UUID `gorm:"type:uuid;not null;index:idx_material_usages_record" json:"printRecordId"`
	MaterialID      uuid.UUID `gorm:"type:uuid;not null;index:idx_material_usages_material" json:"materialId"`
	MaterialName    string    `gorm:"type:text;not null" json:"materialName"`
	WeightUsedGrams float64   `gorm:"type:real;not null" json:"weightUsedGrams"`
}

func (r *PrintRecord) BeforeCreate(tx *gorm.DB) error {
	if err := r.BaseUUIDModel.BeforeCreate(tx); err != nil {
		return err
	}
	if r.ModelName == "" {
		return gorm.ErrInvalidValue
	}
	if r.PrintedAt.IsZero() {
		r.PrintedAt = time.Now()
	}
	if r.WeightUsedGrams != nil && *r.WeightUsedGrams < 0 {
		return gorm.ErrInvalidValue
	}
	return nil
}

// UsageEntries resolves the record into its usage list regardless of shape.
func (r *PrintRecord) UsageEntries() []MaterialUsage {
	if len(r.Usages) > 0 {
		return r.Usages
	}
	if r.MaterialID != nil {
		name := ""
		if r.MaterialName != nil {
			name = *r.MaterialName
		}
		weight := 0.0
		if r.WeightUsedGrams != nil {
			weight = *r.WeightUsedGrams
		}
		return []MaterialUsage{{
			PrintRecordID:   r.ID,
			MaterialID:      *r.MaterialID,
			MaterialName:    name,
			WeightUsedGrams: weight,
		}}
	}
	return nil
}

func (r *PrintRecord) IsMultiMaterial() bool {
	return len(r.Usages) > 0
}

// TotalWeightGrams sums the weight drawn by every usage entry.
func (r *PrintRecord) TotalWeightGrams() float64 {
	var total float64
	for _, usage := range r.UsageEntries() {
		total += usage.WeightUsedGrams
	}
	return total
}
