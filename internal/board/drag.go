package board

import (
	"slices"

	"github.com/BuzzLyutic/kanban-board/internal/model"
)

type Kind int

const (
	KindColumn Kind = iota + 1
	KindTask
)

// Item identifies a draggable element or a drop target.
type Item struct {
	Kind Kind
	ID   int64
}

func ColumnItem(id int64) Item { return Item{Kind: KindColumn, ID: id} }

func TaskItem(id int64) Item { return Item{Kind: KindTask, ID: id} }

type Phase int

const (
	Idle Phase = iota
	DraggingColumn
	DraggingTask
)

func (p Phase) String() string {
	switch p {
	case DraggingColumn:
		return "dragging-column"
	case DraggingTask:
		return "dragging-task"
	}
	return "idle"
}

// Plan is what a finished drag gesture has to persist.
type Plan struct {
	// Columns is the new left-to-right order of every column.
	Columns []int64
	// Tasks lists the new task order of each column the gesture touched.
	Tasks []model.TaskGroup
}

// Controller interprets drag start/over/end events against a Store.
// It is driven from a single goroutine.
type Controller struct {
	store *Store

	phase    Phase
	active   Item
	snapshot []model.Task
	origin   int64
}

func NewController(store *Store) *Controller {
	return &Controller{store: store}
}

func (c *Controller) Phase() Phase { return c.phase }

// Active returns the dragged item; ok is false when idle.
func (c *Controller) Active() (Item, bool) {
	return c.active, c.phase != Idle
}

// Start picks up item. Unknown items leave the controller idle. A gesture
// already in progress is cancelled first.
func (c *Controller) Start(item Item) bool {
	if c.phase != Idle {
		c.Cancel()
	}

	s := c.store.State()
	switch item.Kind {
	case KindColumn:
		i := s.ColumnIndex(item.ID)
		if i < 0 {
			return false
		}
		col := s.Columns[i]
		c.store.Dispatch(SetActiveColumn{Column: &col})
		c.phase = DraggingColumn
	case KindTask:
		i := s.TaskIndex(item.ID)
		if i < 0 {
			return false
		}
		task := s.Tasks[i]
		c.store.Dispatch(SetActiveTask{Task: &task})
		c.phase = DraggingTask
		c.snapshot = slices.Clone(s.Tasks)
		c.origin = task.ColumnID
	default:
		return false
	}
	c.active = item
	return true
}

// Over handles the pointer hovering over. Only task drags react; the mirror
// is updated but nothing is persisted.
func (c *Controller) Over(over *Item) {
	if c.phase != DraggingTask || over == nil || *over == c.active {
		return
	}

	s := c.store.State()
	ai := s.TaskIndex(c.active.ID)
	if ai < 0 {
		return
	}
	tasks := slices.Clone(s.Tasks)

	switch over.Kind {
	case KindTask:
		oi := s.TaskIndex(over.ID)
		if oi < 0 {
			return
		}
		if tasks[ai].ColumnID != tasks[oi].ColumnID {
			// Land right before the hovered task. Moving forward, removing
			// the dragged task shifts the target down by one. Moving backward
			// the target stays at oi, not oi-1, which would wrap when oi is 0.
			tasks[ai].ColumnID = tasks[oi].ColumnID
			to := oi
			if ai < oi {
				to = oi - 1
			}
			tasks = ArrayMove(tasks, ai, to)
		} else {
			tasks = ArrayMove(tasks, ai, oi)
		}
	case KindColumn:
		if s.ColumnIndex(over.ID) < 0 || tasks[ai].ColumnID == over.ID {
			return
		}
		tasks[ai].ColumnID = over.ID
	default:
		return
	}

	c.store.Dispatch(SetTasks{Tasks: tasks})
}

// End drops the dragged item on over and returns the changes to persist, or
// nil when there is nothing to persist. Dropping a task on nothing cancels
// the gesture.
func (c *Controller) End(over *Item) *Plan {
	phase, active, snapshot, origin := c.phase, c.active, c.snapshot, c.origin
	c.reset()

	switch phase {
	case DraggingColumn:
		return c.endColumn(active, over)
	case DraggingTask:
		if over == nil {
			c.store.Dispatch(SetTasks{Tasks: snapshot})
			return nil
		}
		return c.endTask(active, over, snapshot, origin)
	}
	return nil
}

// Cancel aborts the gesture and restores the task order it started from.
func (c *Controller) Cancel() {
	phase, snapshot := c.phase, c.snapshot
	c.reset()
	if phase == DraggingTask {
		c.store.Dispatch(SetTasks{Tasks: snapshot})
	}
}

func (c *Controller) reset() {
	c.phase = Idle
	c.active = Item{}
	c.snapshot = nil
	c.origin = 0
	c.store.Dispatch(SetActiveColumn{}, SetActiveTask{})
}

func (c *Controller) endColumn(active Item, over *Item) *Plan {
	if over == nil || over.Kind != KindColumn || over.ID == active.ID {
		return nil
	}

	s := c.store.State()
	ai, oi := s.ColumnIndex(active.ID), s.ColumnIndex(over.ID)
	if ai < 0 || oi < 0 {
		return nil
	}

	cols := ArrayMove(s.Columns, ai, oi)
	ids := make([]int64, len(cols))
	for i := range cols {
		cols[i].Position = i
		ids[i] = cols[i].ID
	}
	c.store.Dispatch(SetColumns{Columns: cols})
	return &Plan{Columns: ids}
}

func (c *Controller) endTask(active Item, over *Item, snapshot []model.Task, origin int64) *Plan {
	s := c.store.State()
	ai := s.TaskIndex(active.ID)
	if ai < 0 {
		return nil
	}
	tasks := slices.Clone(s.Tasks)

	switch over.Kind {
	case KindTask:
		if oi := s.TaskIndex(over.ID); oi >= 0 && over.ID != active.ID {
			tasks[ai].ColumnID = tasks[oi].ColumnID
			tasks = ArrayMove(tasks, ai, oi)
		}
	case KindColumn:
		if s.ColumnIndex(over.ID) >= 0 {
			tasks[ai].ColumnID = over.ID
		}
	}

	dest := tasks[slices.IndexFunc(tasks, func(t model.Task) bool { return t.ID == active.ID })].ColumnID
	affected := []int64{origin}
	if dest != origin {
		affected = append(affected, dest)
	}

	if !orderChanged(snapshot, tasks, affected) {
		c.store.Dispatch(SetTasks{Tasks: tasks})
		return nil
	}

	plan := &Plan{}
	for _, columnID := range affected {
		ids := make([]int64, 0)
		for i := range tasks {
			if tasks[i].ColumnID == columnID {
				tasks[i].Position = len(ids)
				ids = append(ids, tasks[i].ID)
			}
		}
		plan.Tasks = append(plan.Tasks, model.TaskGroup{ColumnID: columnID, TaskIDs: ids})
	}
	c.store.Dispatch(SetTasks{Tasks: tasks})
	return plan
}

func orderChanged(before, after []model.Task, columns []int64) bool {
	for _, columnID := range columns {
		if !slices.Equal(idsIn(before, columnID), idsIn(after, columnID)) {
			return true
		}
	}
	return false
}

func idsIn(tasks []model.Task, columnID int64) []int64 {
	var ids []int64
	for _, t := range tasks {
		if t.ColumnID == columnID {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
