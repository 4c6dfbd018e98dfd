// Package schema holds the static catalog of importable record types.
package schema

import (
	"errors"
	"fmt"

	"github.com/buslane/buslane/internal/domain"
)

// ErrNotFound is returned by Get for unknown schema IDs.
var ErrNotFound = errors.New("schema not found")

// Registry is the read-only catalog of schema definitions. It is built once
// at process start and shared across all import sessions.
type Registry struct {
	schemas []domain.SchemaDefinition
	byID    map[string]*domain.SchemaDefinition
}

// NewRegistry builds the registry from the built-in definition table.
// It panics on a malformed table since that is a programming error.
func NewRegistry() *Registry {
	r := &Registry{
		schemas: definitions(),
		byID:    make(map[string]*domain.SchemaDefinition),
	}
	for i := range r.schemas {
		s := &r.schemas[i]
		if _, dup := r.byID[s.ID]; dup {
			panic(fmt.Sprintf("schema registry: duplicate schema id %q", s.ID))
		}
		seen := make(map[string]bool, len(s.Fields))
		for _, f := range s.Fields {
			if seen[f.Key] {
				panic(fmt.Sprintf("schema registry: duplicate field key %q in schema %q", f.Key, s.ID))
			}
			seen[f.Key] = true
		}
		if s.Lookup != nil && !seen[s.Lookup.FieldKey] {
			panic(fmt.Sprintf("schema registry: lookup field %q not declared in schema %q", s.Lookup.FieldKey, s.ID))
		}
		r.byID[s.ID] = s
	}
	return r
}

// Schemas returns all schema definitions in declaration order.
func (r *Registry) Schemas() []domain.SchemaDefinition {
	out := make([]domain.SchemaDefinition, len(r.schemas))
	copy(out, r.schemas)
	return out
}

// Get returns the schema with the given ID.
func (r *Registry) Get(id string) (*domain.SchemaDefinition, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// SinkNames returns the set of destination table names referenced by any
// schema, including lookup targets. Used by the sink to refuse writes and
// lookups against tables the registry never mentions.
func (r *Registry) SinkNames() map[string]bool {
	names := make(map[string]bool)
	for _, s := range r.schemas {
		names[s.SinkName] = true
		if s.Lookup != nil {
			names[s.Lookup.SinkName] = true
		}
	}
	return names
}

// definitions is the built-in schema table. Adding a record type here is the
// only change needed to make it importable; the pipeline itself is generic.
func definitions() []domain.SchemaDefinition {
	return []domain.SchemaDefinition{
		{
			ID:       "students",
			Name:     "Students",
			SinkName: "students",
			Fields: []domain.FieldSpec{
				{Key: "student_name", Label: "Student Name", Required: true, Kind: domain.FieldText},
				{Key: "grade", Label: "Grade", Required: true, Kind: domain.FieldText},
				{Key: "school", Label: "School", Required: true, Kind: domain.FieldText},
				{Key: "parent_name", Label: "Parent Name", Kind: domain.FieldText},
				{Key: "parent_phone", Label: "Parent Phone", Kind: domain.FieldText},
				{Key: "parent_email", Label: "Parent Email", Kind: domain.FieldText},
				{Key: "address", Label: "Address", Kind: domain.FieldText},
				{Key: "notes", Label: "Notes", Kind: domain.FieldText},
			},
		},
		{
			ID:       "routes",
			Name:     "Routes",
			SinkName: "routes",
			Fields: []domain.FieldSpec{
				{Key: "route_number", Label: "Route Number", Required: true, Kind: domain.FieldText},
				{Key: "route_name", Label: "Route Name", Required: true, Kind: domain.FieldText},
				{Key: "school", Label: "School", Kind: domain.FieldText},
				{Key: "driver_name", Label: "Driver Name", Kind: domain.FieldText},
				{Key: "capacity", Label: "Capacity", Kind: domain.FieldInteger},
				{Key: "start_time", Label: "Start Time", Kind: domain.FieldText},
				{Key: "end_time", Label: "End Time", Kind: domain.FieldText},
			},
		},
		{
			ID:       "stops",
			Name:     "Stops",
			SinkName: "stops",
			Fields: []domain.FieldSpec{
				{Key: "stop_name", Label: "Stop Name", Required: true, Kind: domain.FieldText},
				{Key: "route_number", Label: "Route Number", Required: true, Kind: domain.FieldText},
				{Key: "sequence", Label: "Sequence", Kind: domain.FieldInteger},
				{Key: "latitude", Label: "Latitude", Kind: domain.FieldFloat},
				{Key: "longitude", Label: "Longitude", Kind: domain.FieldFloat},
				{Key: "pickup_time", Label: "Pickup Time", Kind: domain.FieldText},
			},
			Lookup: &domain.LookupSpec{
				FieldKey:     "route_number",
				SinkName:     "routes",
				MatchColumn:  "route_number",
				TargetColumn: "route_id",
			},
		},
		{
			ID:       "contracts",
			Name:     "Contracts",
			SinkName: "contracts",
			Fields: []domain.FieldSpec{
				{Key: "contract_name", Label: "Contract Name", Required: true, Kind: domain.FieldText},
				{Key: "district", Label: "District", Required: true, Kind: domain.FieldText},
				{Key: "start_date", Label: "Start Date", Kind: domain.FieldText},
				{Key: "end_date", Label: "End Date", Kind: domain.FieldText},
				{Key: "annual_value", Label: "Annual Value", Kind: domain.FieldFloat},
				{Key: "buses_contracted", Label: "Buses Contracted", Kind: domain.FieldInteger},
				{Key: "status", Label: "Status", Kind: domain.FieldText},
			},
		},
		{
			ID:       "performance",
			Name:     "Performance Reviews",
			SinkName: "performance_reviews",
			Fields: []domain.FieldSpec{
				{Key: "driver_name", Label: "Driver Name", Required: true, Kind: domain.FieldText},
				{Key: "review_date", Label: "Review Date", Required: true, Kind: domain.FieldText},
				{Key: "safety_score", Label: "Safety Score", Kind: domain.FieldInteger},
				{Key: "punctuality_score", Label: "Punctuality Score", Kind: domain.FieldInteger},
				{Key: "overall_rating", Label: "Overall Rating", Kind: domain.FieldFloat},
				{Key: "comments", Label: "Comments", Kind: domain.FieldText},
			},
		},
	}
}
