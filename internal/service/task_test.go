package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailroom/backend/internal/domain"
)

func TestTaskService(t *testing.T) {
	pendingTask := func(t *testing.T, f *fixture) domain.Task {
		f.onboard(t)
		tasks, err := f.svc.Tasks.ListForStaff(f.ctx, testStaffID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		return tasks[0]
	}

	t.Run("开通后生成待开通任务", func(t *testing.T) {
		f := newFixture(t)
		task := pendingTask(t, f)
		assert.Equal(t, domain.TaskTypePendingSetup, task.Type)
		assert.Equal(t, domain.TaskOpen, task.Status)
		assert.Equal(t, "Pending setup: Ada Lovelace", task.Title)
		assert.Equal(t, "2025-03-18", task.DueDate)
		assert.Equal(t, "system", task.CreatedBy)
	})

	t.Run("关闭任务记录处理人", func(t *testing.T) {
		f := newFixture(t)
		task := pendingTask(t, f)

		require.NoError(t, f.svc.Tasks.Resolve(f.ctx, task.TaskID, testStaffID, "called client"))

		stored, err := f.store.GetTask(f.ctx, task.TaskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskResolved, stored.Status)
		assert.Equal(t, testStaffID, stored.ResolvedBy)
		assert.Equal(t, "called client", stored.ResolutionNote)
		require.NotNil(t, stored.ResolvedAt)

		tasks, err := f.svc.Tasks.ListForStaff(f.ctx, testStaffID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("暂缓任务仍在列表中", func(t *testing.T) {
		f := newFixture(t)
		task := pendingTask(t, f)

		require.NoError(t, f.svc.Tasks.Snooze(f.ctx, task.TaskID, "2025-03-20T09:00:00Z"))

		tasks, err := f.svc.Tasks.ListForStaff(f.ctx, testStaffID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskSnoozed, tasks[0].Status)
		assert.Equal(t, "2025-03-20", tasks[0].SnoozedUntil)
	})

	t.Run("暂缓日期校验", func(t *testing.T) {
		f := newFixture(t)
		task := pendingTask(t, f)

		err := f.svc.Tasks.Snooze(f.ctx, task.TaskID, "")
		require.Error(t, err)
		assert.Equal(t, "snoozeUntil is required", err.Error())

		err = f.svc.Tasks.Snooze(f.ctx, task.TaskID, "next week")
		require.Error(t, err)
		assert.Equal(t, "snoozeUntil must be a date (YYYY-MM-DD)", err.Error())
	})

	t.Run("任务不存在", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Tasks.Resolve(f.ctx, "TSKMISSING", testStaffID, "")
		assert.True(t, errors.Is(err, ErrNotFound))

		err = f.svc.Tasks.Resolve(f.ctx, "", testStaffID, "")
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("首个收件人自动关闭待开通任务", func(t *testing.T) {
		f := newFixture(t)
		task := pendingTask(t, f)
		f.addRecipient(t, task.PlanCardID, "Ada")

		stored, err := f.store.GetTask(f.ctx, task.TaskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskResolved, stored.Status)
		assert.Equal(t, domain.SetupCompleteNote, stored.ResolutionNote)
	})

	t.Run("未知工作人员", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Tasks.ListForStaff(f.ctx, "STF404")
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
