package model

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"

	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

var (
	Priorities   = []string{PriorityLow, PriorityMedium, PriorityHigh}
	Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}
)

// Task is a card belonging to exactly one column. Position orders tasks
// inside their column.
type Task struct {
	ID          int64  `json:"id"`
	ColumnID    int64  `json:"columnId"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Difficulty  string `json:"difficulty"`
	Position    int    `json:"position"`
}

// TaskInput carries the mutable fields of a task. A nil Position appends on
// create and keeps the stored value on update.
type TaskInput struct {
	ColumnID    int64  `json:"columnId"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Difficulty  string `json:"difficulty"`
	Position    *int   `json:"position,omitempty"`
}

type TaskFilter struct {
	ColumnID *int64
}

// TaskGroup is the desired order of tasks inside one column.
type TaskGroup struct {
	ColumnID int64   `json:"columnId"`
	TaskIDs  []int64 `json:"taskIds"`
}

type TaskOrder struct {
	Columns []TaskGroup `json:"columns"`
}

type TaskReorderAck struct {
	Key      string `json:"key,omitempty"`
	Replayed bool   `json:"replayed"`
	Tasks    []Task `json:"tasks"`
}

// Next returns the value following current in values, wrapping around.
// Unknown values start over from the first entry.
func Next(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// IntPtr is a small helper for optional positions.
func IntPtr(v int) *int {
	return &v
}
