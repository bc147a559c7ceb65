package domain

import "time"

// TokenSignal is a candidate mint discovered by the ingestion feed.
type TokenSignal struct {
	ID         string // UUID for dedup and tracing
	Mint       string
	Channel    string // source channel username
	DetectedAt time.Time
}
