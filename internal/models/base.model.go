package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseUUIDModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime"       json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"       json:"updatedAt"`
	DeletedAt gorm.DeletedAt `                            json:"deletedAt"`
}

// BeforeCreate assigns a v7 UUID so ordering by primary key tracks insertion
// order on both sqlite and postgres. Models that define their own hook must
// call this explicitly since gorm only invokes the outermost hook.
func (b *BaseUUIDModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.Must(uuid.NewV7())
	}
	return nil
}

type BaseModel struct {
	ID        int            `gorm:"type:int;primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime"                    json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"                    json:"updatedAt"`
	DeletedAt gorm.DeletedAt `                                         json:"deletedAt"`
}
