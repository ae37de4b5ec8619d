package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMailStatusTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     MailStatus
		to       MailStatus
		expected bool
	}{
		{"received to released", MailReceived, MailReleased, true},
		{"received to forwarded", MailReceived, MailForwarded, true},
		{"received to deleted", MailReceived, MailDeleted, true},
		{"received to received", MailReceived, MailReceived, false},
		{"released to received", MailReleased, MailReceived, false},
		{"released to forwarded", MailReleased, MailForwarded, false},
		{"forwarded to deleted", MailForwarded, MailDeleted, false},
		{"deleted to released", MailDeleted, MailReleased, false},
		{"received to unknown", MailReceived, MailStatus("lost"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.from.CanTransition(tt.to))
		})
	}
}

func TestMailStatusTerminal(t *testing.T) {
	assert.False(t, MailReceived.Terminal())
	for _, status := range []MailStatus{MailReleased, MailForwarded, MailDeleted} {
		assert.True(t, status.Terminal(), status)
	}
}

func TestParseMailStatus(t *testing.T) {
	status, ok := ParseMailStatus("forwarded")
	assert.True(t, ok)
	assert.Equal(t, MailForwarded, status)

	_, ok = ParseMailStatus("FORWARDED")
	assert.False(t, ok)
	_, ok = ParseMailStatus("")
	assert.False(t, ok)
}

func TestMailItemQuotaExempt(t *testing.T) {
	assert.True(t, (&MailItem{SpecialCase: true, PlanCardID: "PC1"}).QuotaExempt())
	assert.True(t, (&MailItem{}).QuotaExempt())
	assert.False(t, (&MailItem{PlanCardID: "PC1"}).QuotaExempt())
}

func TestMailItemPatch(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, MailItemPatch{}.Empty())
	})

	t.Run("columns and apply agree", func(t *testing.T) {
		status := MailReleased
		sender := "Hydro One"
		confidential := true
		pieces := 3
		released := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
		patch := MailItemPatch{
			Status:       &status,
			SenderName:   &sender,
			Confidential: &confidential,
			PieceCount:   &pieces,
			ReleasedAt:   &released,
		}

		cols := patch.Columns()
		assert.Equal(t, "released", cols["status"])
		assert.Equal(t, "Hydro One", cols["sender_name"])
		assert.Equal(t, true, cols["confidential"])
		assert.Equal(t, 3, cols["piece_count"])
		assert.Equal(t, released, cols["released_at"])
		assert.Len(t, cols, 5)

		item := &MailItem{Status: MailReceived, SenderName: "old", PieceCount: 1, NoteInternal: "keep"}
		patch.Apply(item)
		assert.Equal(t, MailReleased, item.Status)
		assert.Equal(t, "Hydro One", item.SenderName)
		assert.True(t, item.Confidential)
		assert.Equal(t, 3, item.PieceCount)
		assert.Equal(t, "keep", item.NoteInternal)
		if assert.NotNil(t, item.ReleasedAt) {
			assert.Equal(t, released, *item.ReleasedAt)
		}
	})

	t.Run("expected status is a precondition, not a column", func(t *testing.T) {
		expect := MailReceived
		status := MailForwarded
		patch := MailItemPatch{ExpectStatus: &expect, Status: &status}

		assert.Equal(t, map[string]interface{}{"status": "forwarded"}, patch.Columns())
		assert.True(t, patch.Allows(MailReceived))
		assert.False(t, patch.Allows(MailReleased))
		assert.True(t, MailItemPatch{}.Allows(MailDeleted))
		assert.True(t, MailItemPatch{ExpectStatus: &expect}.Empty())
	})

	t.Run("clearing a string still writes the column", func(t *testing.T) {
		empty := ""
		cols := MailItemPatch{SpecialCaseReason: &empty}.Columns()
		assert.Contains(t, cols, "special_case_reason")
	})
}

func TestRecipientTemporaryMarker(t *testing.T) {
	r := &Recipient{Status: RecipientActive, Notes: TemporaryNotes("visiting")}
	assert.Equal(t, "TEMP: visiting", r.Notes)
	assert.True(t, r.IsTemporary())
	assert.False(t, r.CountsTowardCapacity())

	r = &Recipient{Status: RecipientActive, Notes: "temp: lower case"}
	assert.False(t, r.IsTemporary())
	assert.True(t, r.CountsTowardCapacity())

	r.Status = RecipientInactive
	assert.False(t, r.CountsTowardCapacity())
}
