package enrich

// Status is the final state of one input position after a run.
type Status string

const (
	// StatusCached means the id already had a record; no call was made.
	StatusCached Status = "cached"
	// StatusFetched means a comment was fetched and persisted.
	StatusFetched Status = "fetched"
	// StatusNotFound means the API confirmed the comment is gone and the
	// sentinel was persisted.
	StatusNotFound Status = "not_found"
	// StatusSkipped means the fetch or the write failed. Nothing was
	// persisted, so the id is retried on the next run.
	StatusSkipped Status = "skipped"
	// StatusPending means the run stopped before the id was attempted.
	StatusPending Status = "pending"
)

// Outcome is the result for one position of the input.
type Outcome struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Err    error  `json:"-"`
}

// Summary collects the outcomes of a run. Counts are per input position,
// so a duplicated id is counted once per occurrence.
type Summary struct {
	Total    int       `json:"total"`
	Unique   int       `json:"unique"`
	Cached   int       `json:"cached"`
	Fetched  int       `json:"fetched"`
	NotFound int       `json:"not_found"`
	Skipped  int       `json:"skipped"`
	Pending  int       `json:"pending"`
	Outcomes []Outcome `json:"-"`
}

// Calls returns how many outcomes needed an API call.
func (s Summary) Calls() int {
	return s.Fetched + s.NotFound + s.Skipped
}

// Failures returns the skipped outcomes in input order.
func (s Summary) Failures() []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Status == StatusSkipped {
			out = append(out, o)
		}
	}
	return out
}

func (s *Summary) count(st Status) {
	switch st {
	case StatusCached:
		s.Cached++
	case StatusFetched:
		s.Fetched++
	case StatusNotFound:
		s.NotFound++
	case StatusSkipped:
		s.Skipped++
	case StatusPending:
		s.Pending++
	}
}

// Observer receives progress as the driver works. Calls happen on the
// driver's goroutine and must not block for long.
type Observer interface {
	// Started is called once with the input size and the number of
	// positions already satisfied by the cache.
	Started(total, cached int)
	// Processed is called once for every position not counted as cached in
	// Started.
	Processed(o Outcome)
}

type nopObserver struct{}

func (nopObserver) Started(int, int)  {}
func (nopObserver) Processed(Outcome) {}
