package game

import (
	"time"
)

// Stone is one occupied cell, named like "c3" or "b2^1".
type Stone struct {
	Cell string `json:"cell" bson:"cell"`
	Side string `json:"side" bson:"side"`
}

// Ko mirrors the engine's record of the previous ply. Capture is empty unless
// that ply captured exactly one ball.
type Ko struct {
	Placement string `json:"placement,omitempty" bson:"placement,omitempty"`
	Capture   string `json:"capture,omitempty" bson:"capture,omitempty"`
}

type Position struct {
	Size   int     `json:"size" bson:"size"`
	Stones []Stone `json:"stones" bson:"stones"`
	Ko     *Ko     `json:"ko,omitempty" bson:"ko,omitempty"`
}

type PlaceRequest struct {
	Position Position `json:"position"`
	Cell     string   `json:"cell"`
	Side     string   `json:"side"`
}

type LegalRequest struct {
	Position Position `json:"position"`
	Side     string   `json:"side"`
}

type PlacementResult struct {
	Cell           string     `json:"cell" bson:"cell"`
	Side           string     `json:"side" bson:"side"`
	RemovedBatches [][]string `json:"removed_batches" bson:"removed_batches"`
	Position       Position   `json:"position" bson:"position"`
}

type PlaceResponse struct {
	RequestID string          `json:"request_id"`
	Result    PlacementResult `json:"result"`
}

type LegalResponse struct {
	RequestID string   `json:"request_id"`
	Cells     []string `json:"cells"`
}

// Adjudication is the journal entry written for every placement the referee
// rules on, legal or not.
type Adjudication struct {
	RequestID      string     `json:"request_id" bson:"request_id"`
	MatchID        string     `json:"match_id,omitempty" bson:"match_id,omitempty"`
	Size           int        `json:"size" bson:"size"`
	Hash           string     `json:"hash" bson:"hash"`
	Cell           string     `json:"cell" bson:"cell"`
	Side           string     `json:"side" bson:"side"`
	Legal          bool       `json:"legal" bson:"legal"`
	Reason         string     `json:"reason,omitempty" bson:"reason,omitempty"`
	RemovedBatches [][]string `json:"removed_batches,omitempty" bson:"removed_batches,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}
