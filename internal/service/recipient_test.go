package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
)

func TestRecipientService_Add(t *testing.T) {
	t.Run("套餐卡不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Recipients.Add(f.ctx, AddRecipientInput{PlanCardID: "PCMISSING", Name: "Ada"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Equal(t, "Plan card not found", err.Error())
	})

	t.Run("缺少名称", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Recipients.Add(f.ctx, AddRecipientInput{PlanCardID: "PC1"})
		require.Error(t, err)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, "name is required", err.Error())
	})

	t.Run("首个收件人开通套餐卡并关闭待开通任务", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)

		tasks, err := f.svc.Tasks.ListForStaff(f.ctx, testStaffID)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, domain.TaskTypePendingSetup, tasks[0].Type)

		id := f.addRecipient(t, card.PlanCardID, "Ada Lovelace")

		rec, err := f.store.GetRecipient(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.RecipientActive, rec.Status)
		assert.Equal(t, "individual", rec.Type)
		assert.Equal(t, "en", rec.Language)
		require.NotNil(t, rec.ActivatedBy)
		assert.Equal(t, testClientID, *rec.ActivatedBy)

		updated, err := f.store.GetPlanCard(f.ctx, card.PlanCardID)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.RecipientsAdded)
		require.NotNil(t, updated.ActivatedAt)
		assert.Equal(t, testNow, *updated.ActivatedAt)

		task, err := f.store.GetTask(f.ctx, tasks[0].TaskID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskResolved, task.Status)
		assert.Equal(t, domain.SetupCompleteNote, task.ResolutionNote)

		assert.Contains(t, f.pub.publishedTypes(), events.SetupCompleted)
	})

	t.Run("工作人员操作不写入操作者", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)

		id, err := f.svc.Recipients.Add(f.ctx, AddRecipientInput{PlanCardID: card.PlanCardID, Name: "Ada", Actor: testStaffID})
		require.NoError(t, err)

		rec, err := f.store.GetRecipient(f.ctx, id)
		require.NoError(t, err)
		assert.Nil(t, rec.ActivatedBy)
		assert.Nil(t, rec.CreatedBy)
	})

	t.Run("达到上限后拒绝且不写入", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)
		f.addRecipient(t, card.PlanCardID, "One")
		f.addRecipient(t, card.PlanCardID, "Two")

		_, err := f.svc.Recipients.Add(f.ctx, AddRecipientInput{PlanCardID: card.PlanCardID, Name: "Three"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
		assert.Equal(t,
			"Maximum active recipients reached (2). Deactivate one first or add as a temporary recipient.",
			err.Error())

		all, err := f.store.ListRecipientsByPlanCard(f.ctx, card.PlanCardID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
		assert.Equal(t, 2, f.recipientsAdded(t, card.PlanCardID))
	})

	t.Run("临时收件人不受上限约束也不计数", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)
		f.addRecipient(t, card.PlanCardID, "One")
		f.addRecipient(t, card.PlanCardID, "Two")

		id, err := f.svc.Recipients.AddTemporary(f.ctx, AddRecipientInput{PlanCardID: card.PlanCardID, Name: "Visitor", Notes: "until May"})
		require.NoError(t, err)

		rec, err := f.store.GetRecipient(f.ctx, id)
		require.NoError(t, err)
		assert.True(t, rec.IsTemporary())
		assert.Equal(t, "TEMP: until May", rec.Notes)
		assert.Equal(t, 2, f.recipientsAdded(t, card.PlanCardID))
	})

	t.Run("并发添加不会超过上限", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.svc.Recipients.Add(f.ctx, AddRecipientInput{PlanCardID: card.PlanCardID, Name: "R"})
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
			} else {
				assert.True(t, errors.Is(err, ErrCapacityExceeded))
			}
		}
		assert.Equal(t, 2, ok)
		assert.Equal(t, 2, f.recipientsAdded(t, card.PlanCardID))
	})
}

func TestRecipientService_SetStatus(t *testing.T) {
	t.Run("收件人不存在", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Recipients.SetStatus(f.ctx, "RCPMISSING", domain.RecipientActive, testStaffID)
		require.Error(t, err)
		assert.Equal(t, "Recipient not found", err.Error())
	})

	t.Run("停用后重算计数，满员时不能重新启用", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)
		first := f.addRecipient(t, card.PlanCardID, "One")
		f.addRecipient(t, card.PlanCardID, "Two")

		require.NoError(t, f.svc.Recipients.SetStatus(f.ctx, first, domain.RecipientInactive, testStaffID))
		assert.Equal(t, 1, f.recipientsAdded(t, card.PlanCardID))

		f.addRecipient(t, card.PlanCardID, "Three")
		assert.Equal(t, 2, f.recipientsAdded(t, card.PlanCardID))

		err := f.svc.Recipients.SetStatus(f.ctx, first, domain.RecipientActive, testStaffID)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
		assert.Contains(t, err.Error(), "Cannot reactivate")

		rec, err := f.store.GetRecipient(f.ctx, first)
		require.NoError(t, err)
		assert.Equal(t, domain.RecipientInactive, rec.Status)
		assert.Equal(t, 2, f.recipientsAdded(t, card.PlanCardID))
	})

	t.Run("临时收件人满员时仍可重新启用", func(t *testing.T) {
		f := newFixture(t)
		card := f.onboard(t)
		f.addRecipient(t, card.PlanCardID, "One")
		f.addRecipient(t, card.PlanCardID, "Two")
		temp, err := f.svc.Recipients.AddTemporary(f.ctx, AddRecipientInput{PlanCardID: card.PlanCardID, Name: "Visitor"})
		require.NoError(t, err)

		require.NoError(t, f.svc.Recipients.SetStatus(f.ctx, temp, domain.RecipientInactive, testStaffID))
		require.NoError(t, f.svc.Recipients.SetStatus(f.ctx, temp, domain.RecipientActive, testStaffID))
		assert.Equal(t, 2, f.recipientsAdded(t, card.PlanCardID))
	})
}

func TestRecipientService_UpdateAndSearch(t *testing.T) {
	f := newFixture(t)
	card := f.onboard(t)
	id := f.addRecipient(t, card.PlanCardID, "Ada Lovelace")
	f.addRecipient(t, card.PlanCardID, "Charles Babbage")

	t.Run("修改名称保留类型", func(t *testing.T) {
		require.NoError(t, f.svc.Recipients.Update(f.ctx, id, "Ada King", nil))
		rec, err := f.store.GetRecipient(f.ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Ada King", rec.Name)
		assert.Equal(t, "individual", rec.Type)
	})

	t.Run("修改不存在的收件人", func(t *testing.T) {
		err := f.svc.Recipients.Update(f.ctx, "RCPMISSING", "X", nil)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("按名称检索门店收件人", func(t *testing.T) {
		matches, err := f.svc.Recipients.Search(f.ctx, testStaffID, "KING")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, id, matches[0].RecipientID)
		assert.Equal(t, card.PlanCardID, matches[0].PlanCardID)
		assert.Equal(t, domain.AccessActive, matches[0].AccessStatus)
		assert.Equal(t, domain.AutoFeatureScan, matches[0].AutoFeature)

		all, err := f.svc.Recipients.Search(f.ctx, testStaffID, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("工作人员不存在", func(t *testing.T) {
		_, err := f.svc.Recipients.Search(f.ctx, "STF404", "")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("按订阅列出收件人", func(t *testing.T) {
		list, err := f.svc.Recipients.ListForSubscription(f.ctx, testClientID, testSubID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].RecipientID == id || list[1].RecipientID == id)
	})
}
