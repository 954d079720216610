// Package task tracks long-running operations in memory: their status,
// progress, and outcome. Tasks are identified by UUID and survive only
// for the life of the process; durable history lives in pkg/history.
package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netsync-network/netsync/pkg/util"
)

// Status is the lifecycle state of a task. Terminal states (completed,
// failed, cancelled) are final: no transition leaves them.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Step is one named phase of a task, in execution order.
type Step struct {
	Name string `json:"name"`
	Done bool   `json:"done"`
}

// Task is one tracked operation. Step/progress counters only ever grow.
type Task struct {
	ID          string      `json:"id"`
	Operation   string      `json:"operation"` // collect, sync, backup
	Status      Status      `json:"status"`
	Description string      `json:"description,omitempty"`
	Steps       []Step      `json:"steps,omitempty"`
	CurrentStep string      `json:"current_step,omitempty"`
	StepsDone   int         `json:"steps_done"`
	TotalSteps  int         `json:"total_steps"`
	ItemsDone   int         `json:"items_done"`
	TotalItems  int         `json:"total_items"`
	Result      interface{} `json:"result,omitempty"` // set on success only
	Error       string      `json:"error,omitempty"`
	Created     time.Time   `json:"created"`
	Started     time.Time   `json:"started,omitempty"`
	Finished    time.Time   `json:"finished,omitempty"`

	mu        sync.Mutex
	cancelled chan struct{}
}

// ProgressPercent reports completion 0-100. Item counts win over step
// counts when both are tracked, because items (devices) are the finer
// measure.
func (t *Task) ProgressPercent() int {
	switch {
	case t.Status == StatusCompleted:
		return 100
	case t.TotalItems > 0:
		return clampPct(t.ItemsDone * 100 / t.TotalItems)
	case t.TotalSteps > 0:
		return clampPct(t.StepsDone * 100 / t.TotalSteps)
	}
	return 0
}

func clampPct(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// snapshot returns a copy safe to hand out without the lock.
func (t *Task) snapshot() *Task {
	steps := make([]Step, len(t.Steps))
	copy(steps, t.Steps)
	return &Task{
		ID:          t.ID,
		Operation:   t.Operation,
		Status:      t.Status,
		Description: t.Description,
		Steps:       steps,
		CurrentStep: t.CurrentStep,
		StepsDone:   t.StepsDone,
		TotalSteps:  t.TotalSteps,
		ItemsDone:   t.ItemsDone,
		TotalItems:  t.TotalItems,
		Result:      t.Result,
		Error:       t.Error,
		Created:     t.Created,
		Started:     t.Started,
		Finished:    t.Finished,
	}
}

// Manager owns the task table.
type Manager struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewManager builds an empty task table.
func NewManager() *Manager {
	return &Manager{tasks: make(map[string]*Task)}
}

// Create registers a pending task and returns its ID. Step names, when
// given, become the task's ordered step list and its step total.
func (m *Manager) Create(operation, description string, steps ...string) string {
	t := &Task{
		ID:          uuid.NewString(),
		Operation:   operation,
		Description: description,
		Status:      StatusPending,
		Created:     time.Now(),
		TotalSteps:  len(steps),
		cancelled:   make(chan struct{}),
	}
	for _, name := range steps {
		t.Steps = append(t.Steps, Step{Name: name})
	}
	m.mu.Lock()
	m.tasks[t.ID] = t
	m.mu.Unlock()
	util.WithOperation(operation).WithField("task", t.ID).Debug("task created")
	return t.ID
}

// Context derives a run context that is cancelled either by the parent
// or by Cancel on the task. The collector pool and the reconciler
// observe cancellation through it.
func (m *Manager) Context(parent context.Context, id string) (context.Context, error) {
	t, err := m.get(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-t.cancelled:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, nil
}

func (m *Manager) get(id string) (*Task, error) {
	m.mu.RLock()
	t, ok := m.tasks[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown task %q", id)
	}
	return t, nil
}

// Start moves a pending task to running.
func (m *Manager) Start(id string, totalSteps, totalItems int) error {
	t, err := m.get(id)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status.terminal() || t.Status == StatusRunning {
		return fmt.Errorf("task %s is %s, cannot start", id, t.Status)
	}
	t.Status = StatusRunning
	if totalSteps > 0 {
		t.TotalSteps = totalSteps
	}
	t.TotalItems = totalItems
	t.Started = time.Now()
	return nil
}

// Update advances progress. Counters never move backward; a stale
// update (smaller count) is ignored rather than rejected.
func (m *Manager) Update(id, currentStep string, stepsDone, itemsDone int) error {
	t, err := m.get(id)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status.terminal() {
		return fmt.Errorf("task %s is %s, cannot update", id, t.Status)
	}
	if currentStep != "" {
		t.CurrentStep = currentStep
		// Entering a named step marks every earlier step done.
		for i := range t.Steps {
			if t.Steps[i].Name == currentStep {
				for j := 0; j < i; j++ {
					t.Steps[j].Done = true
				}
				break
			}
		}
	}
	if stepsDone > t.StepsDone {
		t.StepsDone = stepsDone
	}
	if itemsDone > t.ItemsDone {
		t.ItemsDone = itemsDone
	}
	return nil
}

// Complete marks the task finished successfully, capturing an optional
// result payload. The result is the only field written after a task
// reaches a terminal state, and only on success.
func (m *Manager) Complete(id string, result interface{}) error {
	return m.finish(id, StatusCompleted, "", result)
}

// Fail marks the task failed with a reason.
func (m *Manager) Fail(id, reason string) error {
	return m.finish(id, StatusFailed, reason, nil)
}

// Cancel marks the task cancelled and fires its cancellation signal,
// which propagates to every context derived via Context. Cancelling an
// already-terminal task is a no-op: the first terminal state wins.
func (m *Manager) Cancel(id string) error {
	t, err := m.get(id)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status.terminal() {
		return nil
	}
	t.Status = StatusCancelled
	t.Finished = time.Now()
	close(t.cancelled)
	return nil
}

func (m *Manager) finish(id string, status Status, reason string, result interface{}) error {
	t, err := m.get(id)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Status.terminal() {
		return fmt.Errorf("task %s is already %s", id, t.Status)
	}
	t.Status = status
	t.Error = reason
	t.Finished = time.Now()
	if status == StatusCompleted {
		t.Result = result
		t.StepsDone = t.TotalSteps
		t.ItemsDone = t.TotalItems
		for i := range t.Steps {
			t.Steps[i].Done = true
		}
	}
	return nil
}

// Get returns a snapshot of one task.
func (m *Manager) Get(id string) (*Task, error) {
	t, err := m.get(id)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot(), nil
}

// List returns snapshots of every task, newest first.
func (m *Manager) List() []*Task {
	m.mu.RLock()
	all := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		all = append(all, t)
	}
	m.mu.RUnlock()

	out := make([]*Task, 0, len(all))
	for _, t := range all {
		t.mu.Lock()
		out = append(out, t.snapshot())
		t.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out
}
