package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBillingPeriodEnd(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		cycle    BillingCycle
		expected string
	}{
		{"Yearly plan", "2025-03-15", BillingYearly, "2026-03-14"},
		{"Monthly plan", "2025-03-15", BillingMonthly, "2025-04-14"},
		{"Monthly plan capped to short month", "2025-01-31", BillingMonthly, "2025-02-27"},
		{"Monthly plan capped in leap year", "2024-01-31", BillingMonthly, "2024-02-28"},
		{"Yearly plan from leap day", "2024-02-29", BillingYearly, "2025-02-27"},
		{"Monthly plan across year end", "2025-12-10", BillingMonthly, "2026-01-09"},
		{"Unknown cycle treated as monthly", "2025-06-01", BillingCycle(""), "2025-06-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := ParseDate(tt.start)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, FormatDate(BillingPeriodEnd(start, tt.cycle)))
		})
	}
}

func TestPlanCardStorageDays(t *testing.T) {
	card := &PlanCard{MailStorageDays: 45, ParcelStorageDays: 10}
	assert.Equal(t, 45, card.StorageDays(false))
	assert.Equal(t, 10, card.StorageDays(true))

	empty := &PlanCard{}
	assert.Equal(t, DefaultStorageDays, empty.StorageDays(false))
	assert.Equal(t, DefaultStorageDays, empty.StorageDays(true))
}

func TestPlanTemplateLocationIDs(t *testing.T) {
	tpl := &PlanTemplate{Locations: " LOC001, ,LOC002 "}
	assert.Equal(t, []string{"LOC001", "LOC002"}, tpl.LocationIDs())
	assert.Empty(t, (&PlanTemplate{}).LocationIDs())
}

func TestAccessStatusCanAccess(t *testing.T) {
	assert.True(t, AccessActive.CanAccess())
	assert.True(t, AccessStatus("").CanAccess())
	assert.True(t, AccessCanceledWithAccess.CanAccess())
	assert.False(t, AccessPaymentRequired.CanAccess())
	assert.False(t, AccessCanceled.CanAccess())
}

func TestClientDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&Client{GivenName: "Ada", FamilyName: "Lovelace"}).DisplayName())
	assert.Equal(t, "Ada", (&Client{GivenName: " Ada "}).DisplayName())
	assert.Equal(t, "Lovelace", (&Client{FamilyName: "Lovelace"}).DisplayName())
	assert.Equal(t, "", (&Client{}).DisplayName())
}

func TestClientActor(t *testing.T) {
	actor := ClientActor("3f2b9c1a-0000-4000-8000-000000000000")
	if assert.NotNil(t, actor) {
		assert.Equal(t, "3f2b9c1a-0000-4000-8000-000000000000", *actor)
	}
	assert.Nil(t, ClientActor("STAFF01"))
	assert.Nil(t, ClientActor(""))
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 5, 6, 23, 59, 0, 0, time.FixedZone("EST", -5*3600))
	assert.Equal(t, "2025-05-07", FormatDate(Today(now)))
}
