package types

import (
	"time"
)

// BaseModel carries the bookkeeping columns shared by persisted limit
// configuration. Any changes to this model should be reflected in the
// database schema by running migrations
type BaseModel struct {
	Status    Status    `db:"status" json:"status" yaml:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" yaml:"updated_at"`
}

func GetDefaultBaseModel() BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive reports whether the record takes part in evaluation. An empty
// status is treated as active so hand written rule files stay terse.
func (b BaseModel) IsActive() bool {
	return b.Status == "" || b.Status == StatusActive
}
