package client

import (
	"sort"
	"sync"

	"taskboard/internal/model"
)

// State is the client-side mirror of the user's board. Values are treated
// as immutable: reducers return fresh copies.
type State struct {
	User            *model.User
	Categories      []model.Category
	TasksByCategory map[string][]model.Task
	Err             string
}

// ActionType keys the reducer dispatch.
type ActionType string

const (
	ActionUserSet           ActionType = "user/set"
	ActionUserCleared       ActionType = "user/cleared"
	ActionCategoriesLoaded  ActionType = "categories/loaded"
	ActionTasksLoaded       ActionType = "tasks/loaded"
	ActionTaskUpserted      ActionType = "task/upserted"
	ActionTaskRemoved       ActionType = "task/removed"
	ActionTasksReordered    ActionType = "tasks/reordered"
	ActionErrorSet          ActionType = "error/set"
	ActionErrorCleared      ActionType = "error/cleared"
)

// Action is the payload union dispatched to the reducer. Only the fields
// relevant to the action type are read.
type Action struct {
	Type       ActionType
	User       *model.User
	Categories []model.Category
	Tasks      []model.Task
	Task       *model.Task
	TaskID     string
	TaskIDs    []string
	CategoryID string
	Err        string
}

// Reduce is the pure state transition. Mutations reflect only committed
// server responses, except ActionTasksReordered which applies the
// speculative drag order pending a refetch.
func Reduce(state State, action Action) State {
	switch action.Type {
	case ActionUserSet:
		state.User = action.User

	case ActionUserCleared:
		state = State{}

	case ActionCategoriesLoaded:
		state.Categories = append([]model.Category(nil), action.Categories...)

	case ActionTasksLoaded:
		buckets := make(map[string][]model.Task)
		for _, task := range action.Tasks {
			buckets[task.CategoryID] = append(buckets[task.CategoryID], task)
		}
		for id := range buckets {
			sortTasks(buckets[id])
		}
		state.TasksByCategory = buckets

	case ActionTaskUpserted:
		if action.Task != nil {
			state.TasksByCategory = upsertTask(state.TasksByCategory, *action.Task)
		}

	case ActionTaskRemoved:
		state.TasksByCategory = removeTask(state.TasksByCategory, action.TaskID)

	case ActionTasksReordered:
		state.TasksByCategory = speculativeReorder(state.TasksByCategory, action.TaskIDs, action.CategoryID)

	case ActionErrorSet:
		state.Err = action.Err

	case ActionErrorCleared:
		state.Err = ""
	}
	return state
}

// Store serializes reducer dispatches over the shared state.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{TasksByCategory: map[string][]model.Task{}}}
}

func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	s.mu.Unlock()
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// sortTasks applies the display order: EOD pins first (earlier pins first),
// then priority, then creation time.
func sortTasks(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsEOD != b.IsEOD {
			return a.IsEOD
		}
		if a.IsEOD && b.IsEOD && a.EODSetAt != nil && b.EODSetAt != nil && !a.EODSetAt.Equal(*b.EODSetAt) {
			return a.EODSetAt.Before(*b.EODSetAt)
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func cloneBuckets(buckets map[string][]model.Task) map[string][]model.Task {
	out := make(map[string][]model.Task, len(buckets))
	for id, tasks := range buckets {
		out[id] = append([]model.Task(nil), tasks...)
	}
	return out
}

func upsertTask(buckets map[string][]model.Task, task model.Task) map[string][]model.Task {
	out := cloneBuckets(buckets)
	// Drop any previous copy; the task may have moved across categories.
	for id, tasks := range out {
		for i := range tasks {
			if tasks[i].ID == task.ID {
				out[id] = append(tasks[:i:i], tasks[i+1:]...)
				break
			}
		}
	}
	out[task.CategoryID] = append(out[task.CategoryID], task)
	sortTasks(out[task.CategoryID])
	return out
}

func removeTask(buckets map[string][]model.Task, taskID string) map[string][]model.Task {
	out := cloneBuckets(buckets)
	for id, tasks := range out {
		for i := range tasks {
			if tasks[i].ID == taskID {
				out[id] = append(tasks[:i:i], tasks[i+1:]...)
				return out
			}
		}
	}
	return out
}

// speculativeReorder mirrors the server's reorder semantics locally:
// priorities become the requested index, EOD pins are never overridden,
// and a target category adopts every listed task.
func speculativeReorder(buckets map[string][]model.Task, taskIDs []string, categoryID string) map[string][]model.Task {
	index := make(map[string]int, len(taskIDs))
	for i, id := range taskIDs {
		index[id] = i
	}

	out := cloneBuckets(buckets)
	var moved []model.Task
	for id, tasks := range out {
		kept := tasks[:0]
		for _, task := range tasks {
			i, listed := index[task.ID]
			if !listed {
				kept = append(kept, task)
				continue
			}
			if !task.IsEOD {
				task.Priority = i
			}
			if categoryID != "" && task.CategoryID != categoryID {
				task.CategoryID = categoryID
				moved = append(moved, task)
				continue
			}
			kept = append(kept, task)
		}
		out[id] = kept
	}
	if len(moved) > 0 {
		out[categoryID] = append(out[categoryID], moved...)
	}
	for id := range out {
		sortTasks(out[id])
	}
	return out
}
