package taskmanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooManyTasks  = errors.New("превышено максимальное количество активных задач")
	ErrTaskNotFound  = errors.New("task not found")
	ErrManagerClosed = errors.New("task manager is closed")
)

// ITaskManager определяет интерфейс для управления фоновыми задачами
type ITaskManager interface {
	SubmitTask(name string, taskFunc TaskFunc) (uuid.UUID, error)
	GetTask(taskID uuid.UUID) (Task, error)
	CancelTask(taskID uuid.UUID) error
	CleanupTasks(age time.Duration) int
	Shutdown(ctx context.Context) error
}

// TaskStatus представляет статус задачи
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

func (s TaskStatus) finished() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// Task снимок состояния фоновой задачи.
type Task struct {
	ID        uuid.UUID
	Name      string
	Status    TaskStatus
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskFunc выполняется в отдельной горутине с контекстом, который
// не зависит от HTTP-запроса и отменяется только менеджером.
type TaskFunc func(ctx context.Context) error

type taskEntry struct {
	Task
	cancel context.CancelFunc
}

// Config содержит конфигурацию для TaskManager
type Config struct {
	MaxTasks int
}

// TaskManager управляет фоновыми задачами (опрос провайдера музыки и т.п.).
type TaskManager struct {
	mu       sync.RWMutex
	tasks    map[uuid.UUID]*taskEntry
	maxTasks int
	closed   bool
	baseCtx  context.Context
	stopAll  context.CancelFunc
	wg       sync.WaitGroup
	logger   *zap.Logger
}

var _ ITaskManager = (*TaskManager)(nil)

// New создает новый экземпляр TaskManager
func New(cfg Config, logger *zap.Logger) *TaskManager {
	maxTasks := cfg.MaxTasks
	if maxTasks <= 0 {
		maxTasks = 10
	}
	baseCtx, stopAll := context.WithCancel(context.Background())
	return &TaskManager{
		tasks:    make(map[uuid.UUID]*taskEntry),
		maxTasks: maxTasks,
		baseCtx:  baseCtx,
		stopAll:  stopAll,
		logger:   logger.Named("TaskManager"),
	}
}

// SubmitTask регистрирует и запускает задачу.
func (tm *TaskManager) SubmitTask(name string, taskFunc TaskFunc) (uuid.UUID, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.closed {
		return uuid.Nil, ErrManagerClosed
	}

	active := 0
	for _, t := range tm.tasks {
		if !t.Status.finished() {
			active++
		}
	}
	if active >= tm.maxTasks {
		return uuid.Nil, ErrTooManyTasks
	}

	taskCtx, cancel := context.WithCancel(tm.baseCtx)
	now := time.Now()
	entry := &taskEntry{
		Task: Task{
			ID:        uuid.New(),
			Name:      name,
			Status:    TaskStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
		cancel: cancel,
	}
	tm.tasks[entry.ID] = entry

	tm.wg.Add(1)
	go func() {
		defer tm.wg.Done()
		defer cancel()
		tm.runTask(taskCtx, entry, taskFunc)
	}()

	return entry.ID, nil
}

func (tm *TaskManager) runTask(ctx context.Context, entry *taskEntry, taskFunc TaskFunc) {
	log := tm.logger.With(zap.String("taskID", entry.ID.String()), zap.String("task", entry.Name))
	tm.updateStatus(entry, TaskStatusRunning, "")

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return taskFunc(ctx)
	}()

	switch {
	case ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled):
		log.Info("Task cancelled")
		tm.updateStatus(entry, TaskStatusCancelled, "cancelled")
	case err != nil:
		log.Warn("Task finished with error", zap.Error(err))
		tm.updateStatus(entry, TaskStatusFailed, err.Error())
	default:
		log.Debug("Task completed")
		tm.updateStatus(entry, TaskStatusCompleted, "")
	}
}

func (tm *TaskManager) updateStatus(entry *taskEntry, status TaskStatus, message string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	// CancelTask мог уже выставить финальный статус
	if entry.Status.finished() {
		return
	}
	entry.Status = status
	entry.Message = message
	entry.UpdatedAt = time.Now()
}

// GetTask возвращает копию состояния задачи.
func (tm *TaskManager) GetTask(taskID uuid.UUID) (Task, error) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	entry, ok := tm.tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	return entry.Task, nil
}

// CancelTask отменяет выполнение задачи
func (tm *TaskManager) CancelTask(taskID uuid.UUID) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	entry, ok := tm.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if entry.Status.finished() {
		return fmt.Errorf("невозможно отменить задачу в статусе %s", entry.Status)
	}

	entry.cancel()
	entry.Status = TaskStatusCancelled
	entry.Message = "cancelled"
	entry.UpdatedAt = time.Now()
	return nil
}

// CleanupTasks удаляет завершенные задачи старше age и возвращает их количество.
func (tm *TaskManager) CleanupTasks(age time.Duration) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	removed := 0
	now := time.Now()
	for id, entry := range tm.tasks {
		if entry.Status.finished() && now.Sub(entry.UpdatedAt) > age {
			delete(tm.tasks, id)
			removed++
		}
	}
	return removed
}

// RunCleanup периодически вызывает CleanupTasks, пока ctx не отменен.
func (tm *TaskManager) RunCleanup(ctx context.Context, interval, age time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := tm.CleanupTasks(age); n > 0 {
				tm.logger.Debug("Finished tasks cleaned up", zap.Int("removed", n))
			}
		}
	}
}

// Shutdown перестает принимать задачи и ждет завершения текущих.
// Если ctx истекает раньше, оставшиеся задачи отменяются.
func (tm *TaskManager) Shutdown(ctx context.Context) error {
	tm.mu.Lock()
	tm.closed = true
	tm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		tm.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		tm.stopAll()
		return nil
	case <-ctx.Done():
		tm.logger.Warn("Shutdown deadline reached, cancelling remaining tasks")
		tm.stopAll()
		<-done
		return fmt.Errorf("таймаут при ожидании завершения задач: %w", ctx.Err())
	}
}
