package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
	"mailroom/backend/internal/storage/memory"
)

// MockPublisher 模拟事件发布
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() {}

// publishedTypes 返回按调用顺序发布过的事件类型
func (m *MockPublisher) publishedTypes() []string {
	types := make([]string, 0, len(m.Calls))
	for _, call := range m.Calls {
		if call.Method == "Publish" {
			types = append(types, call.Arguments.Get(1).(events.Event).Type)
		}
	}
	return types
}

const (
	testClientID = "3f2a9c1e-7b4d-4e8a-9f00-1234567890ab"
	testSubID    = "sub-001"
	testStaffID  = "STF001"
	testLocation = "LOC001"
)

var testNow = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

type fixture struct {
	svc   *Services
	store *memory.Store
	pub   *MockPublisher
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	pub := &MockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	svc := New(Deps{
		Store:  store,
		Events: pub,
		Now:    func() time.Time { return testNow },
	})

	ctx := context.Background()
	require.NoError(t, store.SaveStaff(ctx, &domain.Staff{
		StaffID:           testStaffID,
		Name:              "Front Desk",
		Email:             "desk@example.com",
		Role:              "admin",
		DefaultLocationID: testLocation,
		Pin:               "1234",
		Active:            true,
	}))
	store.PutClient(domain.Client{
		ID:            testClientID,
		GivenName:     "Ada",
		FamilyName:    "Lovelace",
		Email:         "ada@example.com",
		FallbackColor: "#336699",
		Status:        domain.ClientStatusActive,
	})
	store.PutSubscription(domain.Subscription{
		ID:           testSubID,
		ClientID:     testClientID,
		AccessStatus: domain.AccessActive,
		PlanName:     "Business Monthly",
		ProductID:    "prod-basic",
		CreatedAt:    testNow.Add(-24 * time.Hour),
	})
	store.PutPlanTemplate(domain.PlanTemplate{
		ProductID:         "prod-basic",
		PlanName:          "Business",
		BillingCycle:      domain.BillingMonthly,
		MailLimit:         30,
		ParcelsIncluded:   5,
		MaxRecipients:     2,
		MailStorageDays:   45,
		ParcelStorageDays: 14,
		AutoFeature:       domain.AutoFeatureScan,
		Locations:         "LOC001, LOC002",
	})
	store.PutLocation(domain.Location{LocationID: "LOC001", Name: "Downtown", Active: true})
	store.PutLocation(domain.Location{LocationID: "LOC002", Name: "Uptown", Active: true})
	store.PutLocation(domain.Location{LocationID: "LOC003", Name: "Airport", Active: true})

	return &fixture{svc: svc, store: store, pub: pub, ctx: ctx}
}

// onboard 为测试订阅开通套餐卡
func (f *fixture) onboard(t *testing.T) *domain.PlanCard {
	t.Helper()
	id, err := f.svc.Onboarding.Submit(f.ctx, SubmitOnboardingInput{
		ClientID:       testClientID,
		SubscriptionID: testSubID,
		ProductID:      "prod-basic",
	})
	require.NoError(t, err)
	card, err := f.store.GetPlanCard(f.ctx, id)
	require.NoError(t, err)
	return card
}

func (f *fixture) addRecipient(t *testing.T, planCardID, name string) string {
	t.Helper()
	id, err := f.svc.Recipients.Add(f.ctx, AddRecipientInput{PlanCardID: planCardID, Name: name, Actor: testClientID})
	require.NoError(t, err)
	return id
}

func (f *fixture) recipientsAdded(t *testing.T, planCardID string) int {
	t.Helper()
	card, err := f.store.GetPlanCard(f.ctx, planCardID)
	require.NoError(t, err)
	return card.RecipientsAdded
}
