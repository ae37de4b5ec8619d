package memory

import (
	"context"
	"sort"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// CreateTask 保存新任务。
func (s *Store) CreateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *task
	s.tasks[task.TaskID] = &copied
	return nil
}

// GetTask 根据 ID 获取任务。
func (s *Store) GetTask(_ context.Context, taskID string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *task
	return &out, nil
}

// UpdateTask 保存任务状态变化。
func (s *Store) UpdateTask(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.TaskID]; !ok {
		return storage.ErrNotFound
	}
	copied := *task
	s.tasks[task.TaskID] = &copied
	return nil
}

// ResolveOpenTasks 关闭客户名下指定类型的 open 任务。
func (s *Store) ResolveOpenTasks(_ context.Context, clientID, taskType string, resolution storage.TaskResolution) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resolved := 0
	for _, task := range s.tasks {
		if task.ClientID != clientID || task.Type != taskType || task.Status != domain.TaskOpen {
			continue
		}
		at := resolution.At
		task.Status = domain.TaskResolved
		task.ResolvedAt = &at
		task.ResolvedBy = resolution.By
		task.ResolutionNote = resolution.Note
		resolved++
	}
	return resolved, nil
}

// ListPendingTasks 返回全局及指定门店的 open/snoozed 任务，按到期日升序。
func (s *Store) ListPendingTasks(_ context.Context, locationID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]domain.Task, 0)
	for _, task := range s.tasks {
		if !task.IsPending() {
			continue
		}
		if task.LocationID != "" && task.LocationID != locationID {
			continue
		}
		tasks = append(tasks, *task)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].DueDate == tasks[j].DueDate {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].DueDate < tasks[j].DueDate
	})
	return tasks, nil
}
