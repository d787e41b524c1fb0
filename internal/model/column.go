package model

// Column is a named lane; Position defines left-to-right order.
type Column struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type ColumnInput struct {
	Title    string `json:"title"`
	Position *int   `json:"position,omitempty"`
}

type ColumnOrder struct {
	IDs []int64 `json:"ids"`
}

type ColumnReorderAck struct {
	Key      string   `json:"key,omitempty"`
	Replayed bool     `json:"replayed"`
	Columns  []Column `json:"columns"`
}
