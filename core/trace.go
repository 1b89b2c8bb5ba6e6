package core

import (
	"sync"
	"time"
)

// ExecutionStatus is the lifecycle state of a single component execution.
// The only legal transitions are started→completed and started→failed;
// terminal states are final.
type ExecutionStatus string

const (
	// StatusStarted marks a record opened before component logic runs.
	StatusStarted ExecutionStatus = "started"
	// StatusCompleted marks a successful execution.
	StatusCompleted ExecutionStatus = "completed"
	// StatusFailed marks an execution that ended with an error.
	StatusFailed ExecutionStatus = "failed"
)

// ExecutionRecord is the trace of one agent or tool call. Result holds a
// string-safe summary of the outcome; Error holds the failure message.
type ExecutionRecord struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Parameters  map[string]any  `json:"parameters"`
	Status      ExecutionStatus `json:"status"`
	Result      string          `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CompletedAt time.Time       `json:"completed_at,omitzero"`
}

// Trace is a fixed-capacity execution history. When full, appending evicts
// the oldest record first. It is safe for concurrent access.
type Trace struct {
	mu      sync.Mutex
	records []ExecutionRecord
	limit   int
}

// NewTrace creates a Trace retaining at most limit records. A non-positive
// limit falls back to 1 so a Begin always retains its own record.
func NewTrace(limit int) *Trace {
	if limit < 1 {
		limit = 1
	}
	return &Trace{limit: limit}
}

// Begin opens a new record with status started and returns its id. The
// record is appended before any component logic runs.
func (t *Trace) Begin(params map[string]any) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := ExecutionRecord{
		ID:         NewID(),
		Timestamp:  time.Now().UTC(),
		Parameters: params,
		Status:     StatusStarted,
	}
	t.records = append(t.records, rec)
	if len(t.records) > t.limit {
		t.records = t.records[len(t.records)-t.limit:]
	}
	return rec.ID
}

// Complete transitions the record to completed with the given result
// summary. It is a no-op if the record was evicted or already terminal.
func (t *Trace) Complete(id, result string) {
	t.close(id, StatusCompleted, result, "")
}

// Fail transitions the record to failed with the captured error message.
// It is a no-op if the record was evicted or already terminal.
func (t *Trace) Fail(id string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.close(id, StatusFailed, "", msg)
}

func (t *Trace) close(id string, status ExecutionStatus, result, errMsg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.records {
		if t.records[i].ID != id {
			continue
		}
		if t.records[i].Status != StatusStarted {
			return
		}
		t.records[i].Status = status
		t.records[i].Result = result
		t.records[i].Error = errMsg
		t.records[i].CompletedAt = time.Now().UTC()
		return
	}
}

// Records returns a defensive copy of the retained records, oldest first.
func (t *Trace) Records() []ExecutionRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ExecutionRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of retained records.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
