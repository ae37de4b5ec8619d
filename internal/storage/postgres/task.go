package postgres

import (
	"context"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// ========== Task Repository ==========

// CreateTask 保存新任务
func (s *Store) CreateTask(ctx context.Context, task *domain.Task) error {
	return translate(s.db.WithContext(ctx).Create(task).Error)
}

// GetTask 根据 ID 获取任务
func (s *Store) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	var task domain.Task
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// UpdateTask 保存任务状态变化
func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	result := s.db.WithContext(ctx).Model(&domain.Task{}).
		Where("task_id = ?", task.TaskID).
		Updates(map[string]interface{}{
			"status":          task.Status,
			"resolved_at":     task.ResolvedAt,
			"resolved_by":     task.ResolvedBy,
			"resolution_note": task.ResolutionNote,
			"snoozed_until":   task.SnoozedUntil,
		})
	return affected(result)
}

// ResolveOpenTasks 关闭客户名下指定类型的 open 任务
func (s *Store) ResolveOpenTasks(ctx context.Context, clientID, taskType string, resolution storage.TaskResolution) (int, error) {
	result := s.db.WithContext(ctx).Model(&domain.Task{}).
		Where("client_id = ? AND type = ? AND status = ?", clientID, taskType, domain.TaskOpen).
		Updates(map[string]interface{}{
			"status":          domain.TaskResolved,
			"resolved_at":     resolution.At,
			"resolved_by":     resolution.By,
			"resolution_note": resolution.Note,
		})
	return int(result.RowsAffected), translate(result.Error)
}

// ListPendingTasks 返回全局及指定门店的 open/snoozed 任务
func (s *Store) ListPendingTasks(ctx context.Context, locationID string) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.db.WithContext(ctx).
		Where("status IN ?", []domain.TaskStatus{domain.TaskOpen, domain.TaskSnoozed}).
		Where("(location_id = ? OR location_id = '' OR location_id IS NULL)", locationID).
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, translate(err)
}
