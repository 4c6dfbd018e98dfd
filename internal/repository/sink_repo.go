package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/buslane/buslane/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// columnNameRe limits lookup column names to plain SQL identifiers, since
// they are interpolated into the query.
var columnNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// SinkRepository is the record sink backed by gorm. It only accepts table
// names the schema registry declares, and writes each batch in a single
// insert so a batch either all lands or none does.
type SinkRepository struct {
	db            *gorm.DB
	allowedTables map[string]bool
}

// NewSinkRepository creates a sink over db restricted to the given tables.
func NewSinkRepository(db *gorm.DB, allowedTables map[string]bool) *SinkRepository {
	return &SinkRepository{db: db, allowedTables: allowedTables}
}

// InsertBatch writes one batch of records into the named table. Records are
// given generated IDs and timestamps before the write. The insert is
// all-or-nothing at batch granularity.
func (r *SinkRepository) InsertBatch(ctx context.Context, sinkName string, records []domain.Record) error {
	if !r.allowedTables[sinkName] {
		return fmt.Errorf("unknown sink table %q", sinkName)
	}
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]map[string]interface{}, len(records))
	for i, record := range records {
		row := make(map[string]interface{}, len(record)+3)
		for k, v := range record {
			row[k] = v
		}
		if _, ok := row["id"]; !ok {
			row["id"] = uuid.New().String()
		}
		row["created_at"] = now
		row["updated_at"] = now
		rows[i] = row
	}

	if err := r.db.WithContext(ctx).Table(sinkName).Create(rows).Error; err != nil {
		return fmt.Errorf("insert batch into %s: %w", sinkName, err)
	}
	return nil
}

// Lookup resolves human-readable foreign-key values to row IDs in one query.
// Values absent from the table are simply left out of the result.
func (r *SinkRepository) Lookup(ctx context.Context, sinkName, column string, values []string) (map[string]string, error) {
	if !r.allowedTables[sinkName] {
		return nil, fmt.Errorf("unknown sink table %q", sinkName)
	}
	if !columnNameRe.MatchString(column) {
		return nil, fmt.Errorf("invalid lookup column %q", column)
	}
	if len(values) == 0 {
		return map[string]string{}, nil
	}

	type pair struct {
		Value string
		ID    string
	}
	var pairs []pair
	err := r.db.WithContext(ctx).
		Table(sinkName).
		Select(fmt.Sprintf("%s AS value, id", column)).
		Where(fmt.Sprintf("%s IN ?", column), values).
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("lookup %s.%s: %w", sinkName, column, err)
	}

	resolved := make(map[string]string, len(pairs))
	for _, p := range pairs {
		resolved[p.Value] = p.ID
	}
	return resolved, nil
}
