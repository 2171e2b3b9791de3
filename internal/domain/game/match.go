package game

type NewMatchRequest struct {
	Size int `json:"size"`
}

type PlayRequest struct {
	Side string `json:"side"`
	Cell string `json:"cell"`
}

type TurnRequest struct {
	Side string `json:"side"`
}

// Ply is one turn of a match. Cell is empty for passes and resignations.
type Ply struct {
	Side           string     `json:"side" bson:"side"`
	Cell           string     `json:"cell,omitempty" bson:"cell,omitempty"`
	Pass           bool       `json:"pass,omitempty" bson:"pass,omitempty"`
	Resign         bool       `json:"resign,omitempty" bson:"resign,omitempty"`
	RemovedBatches [][]string `json:"removed_batches,omitempty" bson:"removed_batches,omitempty"`
}

type MatchState struct {
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	ToMove   string         `json:"to_move,omitempty"`
	Winner   string         `json:"winner,omitempty"`
	Score    map[string]int `json:"score"`
	Captures map[string]int `json:"captures"`
	Position Position       `json:"position"`
	Plies    []Ply          `json:"plies"`
}
