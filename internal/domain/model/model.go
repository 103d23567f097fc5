// Package model contains domain models passed between pipeline stages.
package model

// Entry represents one leaderboard row at fetch time.
// Wallet is lowercased at the ingestion boundary; upstream mixes case.
type Entry struct {
	Wallet  string `json:"wallet"`
	TotalXP int64  `json:"totalXp"`
}

// RankedEntry is an Entry with its 1-based position after the global sort.
type RankedEntry struct {
	Entry
	Rank int `json:"rank"`
}

// GainRecord captures the per-wallet join of leaderboard rank and the
// points-total endpoint. Gain may be negative; that is a valid, sortable
// value, not an error.
type GainRecord struct {
	Wallet       string `json:"wallet"`
	Rank         int    `json:"rank"`
	CurrentTotal int64  `json:"currentTotal"`
	Gain         int64  `json:"gain"`
}

// EventType tags a ProgressEvent variant.
type EventType string

// Progress event variants. Exactly one Completed or Error event
// terminates a stream.
const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventError     EventType = "error"
)

// ProgressEvent is the tagged event emitted by a pipeline run.
type ProgressEvent struct {
	Type      EventType    `json:"type"`
	Completed int          `json:"completed,omitempty"`
	Total     int          `json:"total,omitempty"`
	Percent   int          `json:"progress,omitempty"`
	Results   []GainRecord `json:"results,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// NewProgress builds a progress event with the derived percent value.
func NewProgress(completed, total int) ProgressEvent {
	percent := 0
	if total > 0 {
		percent = completed * 100 / total
	}
	return ProgressEvent{
		Type:      EventProgress,
		Completed: completed,
		Total:     total,
		Percent:   percent,
	}
}

// NewCompleted builds the terminal success event carrying the ordered top-K.
func NewCompleted(results []GainRecord) ProgressEvent {
	return ProgressEvent{Type: EventCompleted, Results: results}
}

// NewError builds the terminal failure event.
func NewError(message string) ProgressEvent {
	return ProgressEvent{Type: EventError, Message: message}
}

// Terminal reports whether the event ends the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventCompleted || e.Type == EventError
}
