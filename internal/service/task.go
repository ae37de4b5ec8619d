package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// TaskService 管理工作人员待办任务。
type TaskService struct {
	*core
}

// Resolve 关闭任务并记录处理人与备注。
func (s *TaskService) Resolve(ctx context.Context, taskID, actor, note string) error {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}

	now := s.now()
	task.Status = domain.TaskResolved
	task.ResolvedAt = &now
	task.ResolvedBy = actor
	task.ResolutionNote = note
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return notFoundOr(err, "Task not found")
	}

	s.log.Info("task resolved", zap.String("task_id", taskID), zap.String("resolved_by", actor))
	return nil
}

// Snooze 暂缓任务到指定日期，到期后由查看方自行重新展示。
func (s *TaskService) Snooze(ctx context.Context, taskID, until string) error {
	wake, err := parseWakeDate(until)
	if err != nil {
		return err
	}

	task, err := s.load(ctx, taskID)
	if err != nil {
		return err
	}

	task.Status = domain.TaskSnoozed
	task.SnoozedUntil = wake
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return notFoundOr(err, "Task not found")
	}

	s.log.Info("task snoozed", zap.String("task_id", taskID), zap.String("until", wake))
	return nil
}

// ResolvePendingSetup 关闭客户名下所有 open 状态的待开通任务，返回关闭数量。
func (s *TaskService) ResolvePendingSetup(ctx context.Context, clientID, actor string) (int, error) {
	resolved, err := s.store.ResolveOpenTasks(ctx, clientID, domain.TaskTypePendingSetup, storage.TaskResolution{
		At:   s.now(),
		By:   actor,
		Note: domain.SetupCompleteNote,
	})
	if err != nil {
		return 0, storageErr(err)
	}
	return resolved, nil
}

// ListForStaff 返回全局任务及工作人员所在门店的 open/snoozed 任务，按到期日升序。
func (s *TaskService) ListForStaff(ctx context.Context, staffID string) ([]domain.Task, error) {
	locationID, err := s.staffLocation(ctx, staffID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListPendingTasks(ctx, locationID)
	if err != nil {
		return nil, storageErr(err)
	}
	return tasks, nil
}

func (s *TaskService) load(ctx context.Context, taskID string) (*domain.Task, error) {
	if taskID == "" {
		return nil, validation("taskId is required")
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "Task not found")
	}
	return task, nil
}

// parseWakeDate 接受 YYYY-MM-DD 或 RFC3339 时间，统一为日期字符串。
func parseWakeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", validation("snoozeUntil is required")
	}
	if day, err := domain.ParseDate(value); err == nil {
		return domain.FormatDate(day), nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return domain.FormatDate(ts), nil
	}
	return "", validation("snoozeUntil must be a date (YYYY-MM-DD)")
}
