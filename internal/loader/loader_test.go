package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"testing"

	"github.com/buslane/buslane/internal/domain"
	"github.com/buslane/buslane/internal/logger"
	"github.com/buslane/buslane/internal/mapper"
	"github.com/buslane/buslane/internal/schema"
)

type insertCall struct {
	sinkName string
	records  []domain.Record
}

type lookupCall struct {
	sinkName string
	column   string
	values   []string
}

// stubSink records every call and fails the batches its caller marks.
type stubSink struct {
	inserts     []insertCall
	lookups     []lookupCall
	failBatches map[int]error
	lookupMap   map[string]string
	lookupErr   error
}

func (s *stubSink) InsertBatch(_ context.Context, sinkName string, records []domain.Record) error {
	call := len(s.inserts)
	copied := make([]domain.Record, len(records))
	for i, r := range records {
		c := make(domain.Record, len(r))
		for k, v := range r {
			c[k] = v
		}
		copied[i] = c
	}
	s.inserts = append(s.inserts, insertCall{sinkName: sinkName, records: copied})
	if err, ok := s.failBatches[call]; ok {
		return err
	}
	return nil
}

func (s *stubSink) Lookup(_ context.Context, sinkName, column string, values []string) (map[string]string, error) {
	s.lookups = append(s.lookups, lookupCall{sinkName: sinkName, column: column, values: append([]string(nil), values...)})
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	out := make(map[string]string)
	for _, v := range values {
		if id, ok := s.lookupMap[v]; ok {
			out[v] = id
		}
	}
	return out, nil
}

func quietCtx() context.Context {
	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	return log.WithContext(context.Background())
}

func schemaByID(t *testing.T, id string) *domain.SchemaDefinition {
	t.Helper()
	def, err := schema.NewRegistry().Get(id)
	if err != nil {
		t.Fatalf("schema %q missing: %v", id, err)
	}
	return def
}

func routesDoc(n int, broken map[int]bool) *domain.SourceDocument {
	doc := &domain.SourceDocument{
		FileName: "routes.csv",
		Headers:  []string{"Route Number", "Route Name", "Capacity"},
	}
	for i := 0; i < n; i++ {
		row := domain.RawRow{
			"Route Number": fmt.Sprintf("R-%03d", i+1),
			"Route Name":   fmt.Sprintf("Route %d", i+1),
			"Capacity":     "48",
		}
		if broken[i] {
			row["Route Name"] = ""
		}
		doc.Rows = append(doc.Rows, row)
	}
	return doc
}

func checkInvariant(t *testing.T, r *domain.ImportResult) {
	t.Helper()
	if r.ImportedCount+r.SkippedCount+r.ErrorCount != r.TotalRows {
		t.Errorf("reconciliation broken: imported=%d skipped=%d errored=%d total=%d",
			r.ImportedCount, r.SkippedCount, r.ErrorCount, r.TotalRows)
	}
}

func TestLoadBatchBoundaries(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(250, nil)
	sink := &stubSink{}
	m := mapper.AutoMap(doc.Headers, s)

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{BatchSize: 100})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(sink.inserts) != 3 {
		t.Fatalf("got %d batch writes, want 3", len(sink.inserts))
	}
	for i, want := range []int{100, 100, 50} {
		if len(sink.inserts[i].records) != want {
			t.Errorf("batch %d has %d records, want %d", i, len(sink.inserts[i].records), want)
		}
		if sink.inserts[i].sinkName != "routes" {
			t.Errorf("batch %d sink = %q, want routes", i, sink.inserts[i].sinkName)
		}
	}
	if result.ImportedCount != 250 || result.SkippedCount != 0 || result.ErrorCount != 0 {
		t.Errorf("result = %+v", result)
	}
	checkInvariant(t, result)
}

func TestLoadSkipsInvalidRows(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(10, map[int]bool{4: true})
	sink := &stubSink{}
	m := mapper.AutoMap(doc.Headers, s)

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{BatchSize: 100})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if result.ImportedCount != 9 || result.SkippedCount != 1 || result.ErrorCount != 0 {
		t.Errorf("result = %+v", result)
	}
	if result.TotalRows != 10 {
		t.Errorf("TotalRows = %d, want 10", result.TotalRows)
	}
	checkInvariant(t, result)
}

func TestLoadContinuesPastFailedBatch(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(250, nil)
	sink := &stubSink{failBatches: map[int]error{1: errors.New("write conflict")}}
	m := mapper.AutoMap(doc.Headers, s)

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{BatchSize: 100})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(sink.inserts) != 3 {
		t.Fatalf("got %d batch writes, want 3 (failure must not stop the run)", len(sink.inserts))
	}
	if result.ImportedCount != 150 || result.ErrorCount != 100 {
		t.Errorf("result = %+v, want imported=150 errored=100", result)
	}
	checkInvariant(t, result)
}

func TestLoadMappingGateHasNoSideEffects(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(10, nil)
	sink := &stubSink{}
	m := mapper.AutoMap(doc.Headers, s)
	m.Unset("route_name")

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{})
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
	var incomplete *MappingIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("err = %v, want MappingIncompleteError", err)
	}
	if !reflect.DeepEqual(incomplete.Missing, []string{"Route Name"}) {
		t.Errorf("Missing = %v", incomplete.Missing)
	}
	if len(sink.inserts) != 0 || len(sink.lookups) != 0 {
		t.Errorf("gate rejection must not touch the sink: %d inserts, %d lookups", len(sink.inserts), len(sink.lookups))
	}
}

func TestLoadProgressSequence(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(250, nil)
	sink := &stubSink{}
	m := mapper.AutoMap(doc.Headers, s)

	var percents []int
	_, err := New(sink).Load(quietCtx(), doc, m, s, Options{
		BatchSize: 100,
		Progress:  func(p int) { percents = append(percents, p) },
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(percents, []int{40, 80, 100}) {
		t.Errorf("progress = %v, want [40 80 100]", percents)
	}
}

func TestLoadCoercion(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := &domain.SourceDocument{
		FileName: "routes.csv",
		Headers:  []string{"Route Number", "Route Name", "Capacity"},
		Rows: []domain.RawRow{
			{"Route Number": "R-001", "Route Name": " North Loop ", "Capacity": "52"},
			{"Route Number": "R-002", "Route Name": "South Loop", "Capacity": "fifty"},
			{"Route Number": "R-003", "Route Name": "East Loop", "Capacity": ""},
		},
	}
	sink := &stubSink{}
	m := mapper.AutoMap(doc.Headers, s)

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.ImportedCount != 3 {
		t.Fatalf("imported = %d, want 3", result.ImportedCount)
	}

	records := sink.inserts[0].records
	if got := records[0]["route_name"]; got != "North Loop" {
		t.Errorf("text not trimmed: %q", got)
	}
	if got := records[0]["capacity"]; got != 52 {
		t.Errorf("capacity = %v (%T), want int 52", got, got)
	}
	if got := records[1]["capacity"]; got != 0 {
		t.Errorf("unparseable integer should coerce to 0, got %v", got)
	}
	if _, ok := records[2]["capacity"]; ok {
		t.Error("empty optional cell should be omitted from the record")
	}
}

func TestLoadForeignLookup(t *testing.T) {
	s := schemaByID(t, "stops")
	doc := &domain.SourceDocument{
		FileName: "stops.csv",
		Headers:  []string{"Stop Name", "Route Number", "Sequence"},
		Rows: []domain.RawRow{
			{"Stop Name": "Main & 1st", "Route Number": "R-001", "Sequence": "1"},
			{"Stop Name": "Main & 5th", "Route Number": "R-001", "Sequence": "2"},
			{"Stop Name": "Oak & Elm", "Route Number": "R-404", "Sequence": "1"},
		},
	}
	sink := &stubSink{lookupMap: map[string]string{"R-001": "route-uuid-1"}}
	m := mapper.AutoMap(doc.Headers, s)

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.ImportedCount != 3 {
		t.Fatalf("imported = %d, want 3 (lookup misses are not errors)", result.ImportedCount)
	}

	if len(sink.lookups) != 1 {
		t.Fatalf("got %d lookup queries, want 1 per batch", len(sink.lookups))
	}
	call := sink.lookups[0]
	if call.sinkName != "routes" || call.column != "route_number" {
		t.Errorf("lookup target = %s.%s", call.sinkName, call.column)
	}
	if !reflect.DeepEqual(call.values, []string{"R-001", "R-404"}) {
		t.Errorf("lookup values = %v, want distinct [R-001 R-404]", call.values)
	}

	records := sink.inserts[0].records
	for i, r := range records {
		if _, ok := r["route_number"]; ok {
			t.Errorf("record %d still carries the raw lookup value", i)
		}
	}
	if records[0]["route_id"] != "route-uuid-1" || records[1]["route_id"] != "route-uuid-1" {
		t.Errorf("matched rows missing resolved reference: %v", records[:2])
	}
	if _, ok := records[2]["route_id"]; ok {
		t.Error("unmatched row must be inserted without a reference")
	}
}

func TestLoadLookupErrorDegrades(t *testing.T) {
	s := schemaByID(t, "stops")
	doc := &domain.SourceDocument{
		FileName: "stops.csv",
		Headers:  []string{"Stop Name", "Route Number"},
		Rows: []domain.RawRow{
			{"Stop Name": "Main & 1st", "Route Number": "R-001"},
		},
	}
	sink := &stubSink{lookupErr: errors.New("sink unavailable")}
	m := mapper.AutoMap(doc.Headers, s)

	result, err := New(sink).Load(quietCtx(), doc, m, s, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.ImportedCount != 1 {
		t.Errorf("imported = %d, want 1 (lookup failure degrades, not fails)", result.ImportedCount)
	}
	r := sink.inserts[0].records[0]
	if _, ok := r["route_id"]; ok {
		t.Error("no reference should be set when the lookup query fails")
	}
	if _, ok := r["route_number"]; ok {
		t.Error("raw lookup value should still be dropped")
	}
}

func TestLoadCancellationBetweenBatches(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(250, nil)
	m := mapper.AutoMap(doc.Headers, s)

	ctx, cancel := context.WithCancel(quietCtx())
	sink := &stubSink{}
	var calls int
	_, err := New(sink).Load(ctx, doc, m, s, Options{
		BatchSize: 100,
		Progress: func(int) {
			calls++
			if calls == 1 {
				cancel()
			}
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(sink.inserts) != 1 {
		t.Fatalf("got %d batch writes after cancel, want 1", len(sink.inserts))
	}
}

func TestLoadCancellationAccountsUndispatchedRows(t *testing.T) {
	s := schemaByID(t, "routes")
	doc := routesDoc(250, nil)
	m := mapper.AutoMap(doc.Headers, s)

	ctx, cancel := context.WithCancel(quietCtx())
	sink := &stubSink{}
	result, err := New(sink).Load(ctx, doc, m, s, Options{
		BatchSize: 100,
		Progress:  func(p int) { cancel() },
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if result.ImportedCount != 100 || result.ErrorCount != 150 {
		t.Errorf("result = %+v, want imported=100 errored=150", result)
	}
	checkInvariant(t, result)
}
