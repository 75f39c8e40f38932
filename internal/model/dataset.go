package model

import "time"

// Dataset statuses.
const (
	DatasetStatusPending = "pending"
	DatasetStatusIndexed = "indexed"
	DatasetStatusFailed  = "failed"
)

// Dataset records one indexed textbook source for a subject.
type Dataset struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Subject   string    `json:"subject" gorm:"type:varchar(32);index;not null"`
	Source    string    `json:"source" gorm:"type:varchar(512);not null"` // File path or URL
	Hash      string    `json:"hash" gorm:"type:varchar(64);index"`       // Content hash for deduplication
	ChunkNum  int       `json:"chunk_num" gorm:"default:0"`
	Status    string    `json:"status" gorm:"type:varchar(32);default:'pending'"`
	Error     string    `json:"error,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Dataset.
func (Dataset) TableName() string {
	return "mcq_datasets"
}
