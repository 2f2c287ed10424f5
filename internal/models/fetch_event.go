package models

import (
	"encoding/json"
	"time"
)

// FetchEvent is published whenever a freshly fetched payload is stored.
type FetchEvent struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// WarmRequest asks the warmer to pull Key through the cache.
type WarmRequest struct {
	Key string `json:"key"`
}
