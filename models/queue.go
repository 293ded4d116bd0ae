package models

import (
	"encoding/json"
	"time"
)

// QueuedRequest is a mutating API call that failed due to connectivity loss
// and was deferred for replay. It is persisted immediately on enqueue so a
// process restart does not lose pending writes, and destroyed on successful
// replay or after exceeding the retry ceiling.
type QueuedRequest struct {
	ID         string          `json:"id"`
	Method     string          `json:"method"`
	URL        string          `json:"url"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	RetryCount int             `json:"retry_count"`
}
