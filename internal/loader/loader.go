// Package loader writes mapped source rows to a record sink in fixed-size
// batches and accounts for every row as imported, skipped, or errored.
package loader

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/buslane/buslane/internal/domain"
	"github.com/buslane/buslane/internal/logger"
	"github.com/buslane/buslane/internal/mapper"
)

// DefaultBatchSize is the number of records per sink write when the caller
// does not override it.
const DefaultBatchSize = 100

// Sink is the external record store the loader writes to. A batch either
// all lands or none does from the caller's standpoint; the loader assumes
// nothing stronger.
type Sink interface {
	InsertBatch(ctx context.Context, sinkName string, records []domain.Record) error
	Lookup(ctx context.Context, sinkName, column string, values []string) (map[string]string, error)
}

// Progress receives the cumulative completion percentage after each batch.
// Advisory only; it is not part of the durable result.
type Progress func(percent int)

// MappingIncompleteError blocks a load whose mapping leaves required fields
// without a header. The gate rejects before any row is processed, so a
// failed gate has zero side effects on the sink.
type MappingIncompleteError struct {
	Missing []string
}

func (e *MappingIncompleteError) Error() string {
	return fmt.Sprintf("mapping incomplete: missing required fields %s", strings.Join(e.Missing, ", "))
}

// Options tunes one load run.
type Options struct {
	BatchSize int
	Progress  Progress
}

// Loader runs the load stage against a sink.
type Loader struct {
	sink Sink
}

// New creates a Loader bound to a sink.
func New(sink Sink) *Loader {
	return &Loader{sink: sink}
}

// Load partitions the document's rows into valid and skipped under the
// mapping, coerces and writes the valid rows in sequential fixed-size
// batches, and resolves the schema's foreign lookup per batch. A failed
// batch write marks every record in that batch errored and the run
// continues; partial success across the file is an expected outcome. The
// returned counts always add up to the document's row count.
func (l *Loader) Load(ctx context.Context, doc *domain.SourceDocument, m *domain.ColumnMapping, s *domain.SchemaDefinition, opts Options) (*domain.ImportResult, error) {
	var missing []string
	for _, f := range s.RequiredFields() {
		if _, ok := m.Header(f.Key); !ok {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return nil, &MappingIncompleteError{Missing: missing}
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	result := &domain.ImportResult{TotalRows: doc.RowCount()}

	var records []domain.Record
	for _, row := range doc.Rows {
		if !mapper.RowValid(row, m, s) {
			result.SkippedCount++
			continue
		}
		records = append(records, buildRecord(row, m, s))
	}

	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldSchema: s.ID,
		"file_name":        doc.FileName,
	})
	log.WithFields(logger.Fields{
		"valid_rows":   len(records),
		"skipped_rows": result.SkippedCount,
		"batch_size":   batchSize,
	}).Info("Starting batched load")

	for start := 0; start < len(records); start += batchSize {
		if err := ctx.Err(); err != nil {
			// Cooperative cancellation between batches: rows never dispatched
			// are counted as errored so the reconciliation still adds up.
			// Batches already written stay written.
			remaining := len(records) - start
			result.ErrorCount += remaining
			log.WithError(err).WithField("undispatched_rows", remaining).Warn("Load canceled between batches")
			break
		}

		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		if s.Lookup != nil {
			l.resolveLookup(ctx, batch, s.Lookup, log)
		}

		if err := l.sink.InsertBatch(ctx, s.SinkName, batch); err != nil {
			result.ErrorCount += len(batch)
			log.WithError(err).WithFields(logger.Fields{
				"batch_start": start,
				"batch_len":   len(batch),
			}).Error("Batch write failed")
		} else {
			result.ImportedCount += len(batch)
		}

		if opts.Progress != nil {
			percent := int(math.Round(float64(end) / float64(len(records)) * 100))
			opts.Progress(percent)
		}
	}

	log.WithFields(logger.Fields{
		"imported": result.ImportedCount,
		"skipped":  result.SkippedCount,
		"errored":  result.ErrorCount,
		"total":    result.TotalRows,
	}).Info("Load completed")

	return result, nil
}

// resolveLookup replaces the batch's raw lookup values with resolved sink
// identifiers. One query covers the batch's distinct values; records whose
// value has no match are inserted without the reference rather than failed.
// A lookup query error degrades the same way and is left for the batch
// write to succeed or fail on its own.
func (l *Loader) resolveLookup(ctx context.Context, batch []domain.Record, spec *domain.LookupSpec, log *logger.Logger) {
	seen := make(map[string]bool)
	var values []string
	for _, record := range batch {
		raw, ok := record[spec.FieldKey].(string)
		if !ok || raw == "" {
			continue
		}
		if !seen[raw] {
			seen[raw] = true
			values = append(values, raw)
		}
	}
	if len(values) == 0 {
		return
	}

	resolved, err := l.sink.Lookup(ctx, spec.SinkName, spec.MatchColumn, values)
	if err != nil {
		log.WithError(err).WithField("lookup_sink", spec.SinkName).Warn("Foreign lookup failed, inserting without references")
		resolved = nil
	}

	for _, record := range batch {
		raw, ok := record[spec.FieldKey].(string)
		delete(record, spec.FieldKey)
		if !ok {
			continue
		}
		if id, found := resolved[raw]; found {
			record[spec.TargetColumn] = id
		}
	}
}
