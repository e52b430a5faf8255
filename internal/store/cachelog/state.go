package cachelog

import (
	"github.com/hay-kot/commentrank/internal/core/comment"
	"github.com/hay-kot/commentrank/pkg/kv"
)

// State is the in-memory view of the cache: id to record, in the order ids
// were first seen. It is rebuilt from the log on load and grows as the
// pipeline persists new records.
type State struct {
	records *kv.Store[string, comment.Record]
}

// NewState returns an empty state.
func NewState() *State {
	return &State{records: kv.New[string, comment.Record]()}
}

// Get returns the record for id.
func (s *State) Get(id string) (comment.Record, bool) {
	return s.records.Get(id)
}

// Has reports whether id has a record.
func (s *State) Has(id string) bool {
	return s.records.Has(id)
}

// Put stores rec, replacing any existing record for the same id. It reports
// whether the id was new.
func (s *State) Put(rec comment.Record) bool {
	return s.records.Set(rec.ID, rec)
}

// Len returns the number of distinct ids.
func (s *State) Len() int {
	return s.records.Len()
}

// Records returns every record in first-seen order.
func (s *State) Records() []comment.Record {
	return s.records.Values()
}
