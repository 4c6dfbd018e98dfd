package schema

import (
	"errors"
	"testing"

	"github.com/buslane/buslane/internal/domain"
)

func TestRegistryCatalog(t *testing.T) {
	r := NewRegistry()

	want := []string{"students", "routes", "stops", "contracts", "performance"}
	got := r.Schemas()
	if len(got) != len(want) {
		t.Fatalf("got %d schemas, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("schemas[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()

	s, err := r.Get("routes")
	if err != nil {
		t.Fatalf("Get(routes): %v", err)
	}
	if s.SinkName != "routes" {
		t.Errorf("SinkName = %q", s.SinkName)
	}
	if len(s.RequiredFields()) != 2 {
		t.Errorf("routes has %d required fields, want 2", len(s.RequiredFields()))
	}

	if _, err := r.Get("drivers"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(drivers) err = %v, want ErrNotFound", err)
	}
}

func TestRegistryStopsLookup(t *testing.T) {
	r := NewRegistry()

	s, err := r.Get("stops")
	if err != nil {
		t.Fatalf("Get(stops): %v", err)
	}
	if s.Lookup == nil {
		t.Fatal("stops schema should declare a foreign lookup")
	}
	if s.Lookup.FieldKey != "route_number" || s.Lookup.SinkName != "routes" {
		t.Errorf("lookup = %+v", s.Lookup)
	}
	if s.Lookup.TargetColumn != "route_id" {
		t.Errorf("TargetColumn = %q, want route_id", s.Lookup.TargetColumn)
	}
	if s.Field(s.Lookup.FieldKey) == nil {
		t.Error("lookup field key must be a declared field")
	}
}

func TestRegistrySinkNames(t *testing.T) {
	r := NewRegistry()

	names := r.SinkNames()
	for _, n := range []string{"students", "routes", "stops", "contracts", "performance_reviews"} {
		if !names[n] {
			t.Errorf("sink %q missing", n)
		}
	}
	if names["drivers"] {
		t.Error("unexpected sink name")
	}
}

func TestFieldKinds(t *testing.T) {
	r := NewRegistry()

	s, err := r.Get("stops")
	if err != nil {
		t.Fatalf("Get(stops): %v", err)
	}
	cases := map[string]domain.FieldKind{
		"stop_name": domain.FieldText,
		"sequence":  domain.FieldInteger,
		"latitude":  domain.FieldFloat,
	}
	for key, kind := range cases {
		f := s.Field(key)
		if f == nil {
			t.Errorf("field %q missing", key)
			continue
		}
		if f.Kind != kind {
			t.Errorf("field %q kind = %v, want %v", key, f.Kind, kind)
		}
	}
}
