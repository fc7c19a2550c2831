package domain

import "encoding/json"

// toJSON marshals v into a datatypes.JSON-compatible byte slice, matching
// the teacher pack's convention of storing structured sub-documents as
// jsonb columns (see internal/domain/materials/global_entity.go and
// internal/modules/library/steps/taxonomy_route.go's `toJSON` helper).
// A marshal failure collapses to "null" rather than panicking, since
// these values are always built from well-formed in-memory structs.
func toJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
