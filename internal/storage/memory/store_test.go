package memory

import (
	"context"
	"testing"
	"time"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PlanCardOperations(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	card := &domain.PlanCard{
		PlanCardID:     "PC000000000001",
		ClientID:       "client-1",
		SubscriptionID: "sub-1",
		LocationID:     "LOC001",
		Status:         domain.PlanCardStatusActive,
		MaxRecipients:  2,
		MailsUsed:      4,
	}
	require.NoError(t, store.CreatePlanCard(ctx, card))

	// 同一订阅不允许第二张套餐卡
	dup := *card
	dup.PlanCardID = "PC000000000002"
	assert.ErrorIs(t, store.CreatePlanCard(ctx, &dup), storage.ErrAlreadyExists)

	got, err := store.GetPlanCardBySubscription(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, card.PlanCardID, got.PlanCardID)

	// 返回值是副本，修改不影响存储
	got.MaxRecipients = 99
	again, err := store.GetPlanCard(ctx, card.PlanCardID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.MaxRecipients)

	used, err := store.BumpUsage(ctx, card.PlanCardID, false)
	require.NoError(t, err)
	assert.Equal(t, 5, used)
	parcels, err := store.BumpUsage(ctx, card.PlanCardID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, parcels)

	_, err = store.BumpUsage(ctx, "missing", false)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	cards, err := store.ListActivePlanCardsByLocation(ctx, "LOC001")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}

func TestMemoryStore_RecipientCount(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.CreatePlanCard(ctx, &domain.PlanCard{PlanCardID: "PC1", SubscriptionID: "sub-1"}))

	now := time.Now()
	recipients := []domain.Recipient{
		{RecipientID: "R1", PlanCardID: "PC1", Status: domain.RecipientActive, CreatedAt: now},
		{RecipientID: "R2", PlanCardID: "PC1", Status: domain.RecipientActive, Notes: domain.TemporaryNotes("guest"), CreatedAt: now.Add(time.Second)},
		{RecipientID: "R3", PlanCardID: "PC1", Status: domain.RecipientInactive, CreatedAt: now.Add(2 * time.Second)},
		{RecipientID: "R4", PlanCardID: "PC2", Status: domain.RecipientActive, CreatedAt: now},
	}
	for i := range recipients {
		require.NoError(t, store.CreateRecipient(ctx, &recipients[i]))
	}

	count, err := store.SyncRecipientCount(ctx, "PC1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.UpdateRecipientStatus(ctx, "R3", domain.RecipientActive))
	count, err = store.SyncRecipientCount(ctx, "PC1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	card, err := store.GetPlanCard(ctx, "PC1")
	require.NoError(t, err)
	assert.Equal(t, 2, card.RecipientsAdded)

	list, err := store.ListRecipientsByPlanCard(ctx, "PC1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "R1", list[0].RecipientID)
	assert.Equal(t, "R3", list[2].RecipientID)
}

func TestMemoryStore_MailListing(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)

	items := []domain.MailItem{
		{MailID: "ML1", LocationID: "LOC001", ClientID: "c1", Status: domain.MailReceived, LoggedAt: base},
		{MailID: "ML2", LocationID: "LOC001", ClientID: "c1", Status: domain.MailDeleted, LoggedAt: base.Add(time.Hour)},
		{MailID: "ML3", LocationID: "LOC001", SpecialCase: true, Status: domain.MailReceived, LoggedAt: base.Add(2 * time.Hour)},
		{MailID: "ML4", LocationID: "LOC002", SpecialCase: true, Status: domain.MailReleased, LoggedAt: base.Add(3 * time.Hour)},
	}
	for i := range items {
		require.NoError(t, store.CreateMailItem(ctx, &items[i]))
	}

	t.Run("按时间倒序且排除已删除", func(t *testing.T) {
		list, err := store.ListMail(ctx, storage.MailFilter{LocationID: "LOC001"})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "ML3", list[0].MailID)
		assert.Equal(t, "ML1", list[1].MailID)
	})

	t.Run("仅未处理的特殊件", func(t *testing.T) {
		list, err := store.ListMail(ctx, storage.MailFilter{ExceptionsOnly: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "ML3", list[0].MailID)
	})

	t.Run("数量限制", func(t *testing.T) {
		list, err := store.ListMail(ctx, storage.MailFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("软删除条目仍可按ID读取", func(t *testing.T) {
		item, err := store.GetMailItem(ctx, "ML2")
		require.NoError(t, err)
		assert.Equal(t, domain.MailDeleted, item.Status)
	})

	t.Run("前置状态不满足时不写入", func(t *testing.T) {
		expect := domain.MailReceived
		status := domain.MailForwarded
		err := store.UpdateMailItem(ctx, "ML4", domain.MailItemPatch{ExpectStatus: &expect, Status: &status})
		assert.ErrorIs(t, err, storage.ErrStatusConflict)

		item, err := store.GetMailItem(ctx, "ML4")
		require.NoError(t, err)
		assert.Equal(t, domain.MailReleased, item.Status)

		err = store.UpdateMailItem(ctx, "MLMISSING", domain.MailItemPatch{ExpectStatus: &expect, Status: &status})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("前置状态满足时写入", func(t *testing.T) {
		expect := domain.MailReceived
		status := domain.MailForwarded
		require.NoError(t, store.UpdateMailItem(ctx, "ML1", domain.MailItemPatch{ExpectStatus: &expect, Status: &status}))

		err := store.UpdateMailItem(ctx, "ML1", domain.MailItemPatch{ExpectStatus: &expect, Status: &status})
		assert.ErrorIs(t, err, storage.ErrStatusConflict)
	})
}

func TestMemoryStore_Tasks(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	tasks := []domain.Task{
		{TaskID: "T1", Type: domain.TaskTypePendingSetup, Status: domain.TaskOpen, ClientID: "c1", DueDate: "2025-05-03"},
		{TaskID: "T2", Type: "custom", Status: domain.TaskSnoozed, LocationID: "LOC001", DueDate: "2025-05-01"},
		{TaskID: "T3", Type: "custom", Status: domain.TaskOpen, LocationID: "LOC002", DueDate: "2025-04-01"},
		{TaskID: "T4", Type: "custom", Status: domain.TaskResolved, DueDate: "2025-01-01"},
	}
	for i := range tasks {
		require.NoError(t, store.CreateTask(ctx, &tasks[i]))
	}

	list, err := store.ListPendingTasks(ctx, "LOC001")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "T2", list[0].TaskID)
	assert.Equal(t, "T1", list[1].TaskID)

	resolved, err := store.ResolveOpenTasks(ctx, "c1", domain.TaskTypePendingSetup, storage.TaskResolution{
		At:   time.Now(),
		By:   "system",
		Note: domain.SetupCompleteNote,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)

	task, err := store.GetTask(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskResolved, task.Status)
	assert.Equal(t, domain.SetupCompleteNote, task.ResolutionNote)
}

func TestMemoryStore_StaffAndClients(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.SaveStaff(ctx, &domain.Staff{StaffID: "S1", Active: true}))
	require.NoError(t, store.SaveStaff(ctx, &domain.Staff{StaffID: "S2", Active: false}))

	_, err := store.GetActiveStaff(ctx, "S1")
	assert.NoError(t, err)
	_, err = store.GetActiveStaff(ctx, "S2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.PutSubscription(domain.Subscription{ID: "sub-old", ClientID: "c1", CreatedAt: older})
	store.PutSubscription(domain.Subscription{ID: "sub-new", ClientID: "c1", CreatedAt: older.AddDate(1, 0, 0)})
	store.PutSubscription(domain.Subscription{ID: "sub-other", ClientID: "c2", CreatedAt: older})

	subs, err := store.ListSubscriptionsByClient(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "sub-new", subs[0].ID)
}
