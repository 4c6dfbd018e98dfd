package domain

import "time"

// Record is one sink-ready row: column name to coerced value. Unmapped or
// empty optional fields are absent so the sink's own defaulting applies.
type Record map[string]interface{}

// ImportResult is the reconciliation of one completed load attempt.
// ImportedCount + SkippedCount + ErrorCount always equals TotalRows.
type ImportResult struct {
	ImportedCount int `json:"imported_count"`
	SkippedCount  int `json:"skipped_count"`
	ErrorCount    int `json:"error_count"`
	TotalRows     int `json:"total_rows"`
}

// ImportAudit is the durable record of one import attempt, written by the
// reconciliation reporter after every load.
type ImportAudit struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	SchemaID     string    `gorm:"type:text;not null;index:idx_import_audits_schema" json:"schema_id"`
	FileName     string    `gorm:"type:text;not null" json:"file_name"`
	TotalRows    int       `gorm:"not null;default:0" json:"total_rows"`
	ImportedRows int       `gorm:"not null;default:0" json:"imported_rows"`
	SkippedRows  int       `gorm:"not null;default:0" json:"skipped_rows"`
	ErrorRows    int       `gorm:"not null;default:0" json:"error_rows"`
	Actor        string    `gorm:"type:text" json:"actor"`
	CreatedAt    time.Time `gorm:"index:idx_import_audits_created" json:"created_at"`
}

// TableName returns the database table name for ImportAudit.
func (ImportAudit) TableName() string {
	return "import_audits"
}
