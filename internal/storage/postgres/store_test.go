package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mailroom/backend/internal/config"
	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

const lockedCardQuery = `SELECT \* FROM "plan_cards" WHERE plan_card_id = \$1 .*FOR UPDATE`

// newMockStore 创建基于 sqlmock 的 PostgreSQL 存储
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewStoreWithDialector(postgres.New(postgres.Config{Conn: db}), &config.DatabaseConfig{})
	require.NoError(t, err)
	return store, mock
}

func TestStore_SyncRecipientCount(t *testing.T) {
	ctx := context.Background()

	t.Run("锁定套餐卡后覆盖收件人数", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockedCardQuery).
			WillReturnRows(sqlmock.NewRows([]string{"plan_card_id", "recipients_added"}).AddRow("PC1", 7))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "recipients"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
		mock.ExpectExec(`UPDATE "plan_cards" SET "recipients_added"=\$1 WHERE plan_card_id = \$2`).
			WithArgs(3, "PC1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		count, err := store.SyncRecipientCount(ctx, "PC1")
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("套餐卡不存在时回滚", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockedCardQuery).
			WillReturnRows(sqlmock.NewRows([]string{"plan_card_id"}))
		mock.ExpectRollback()

		_, err := store.SyncRecipientCount(ctx, "PCMISSING")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_BumpUsage(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		parcel bool
		column string
		want   int
	}{
		{name: "信件用量加一", parcel: false, column: "mails_used", want: 5},
		{name: "包裹用量加一", parcel: true, column: "parcels_used", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)

			mock.ExpectBegin()
			mock.ExpectQuery(lockedCardQuery).
				WillReturnRows(sqlmock.NewRows([]string{"plan_card_id", "mails_used", "parcels_used"}).AddRow("PC1", 4, 1))
			mock.ExpectExec(fmt.Sprintf(`UPDATE "plan_cards" SET "%s"=\$1 WHERE plan_card_id = \$2`, tt.column)).
				WithArgs(tt.want, "PC1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			next, err := store.BumpUsage(ctx, "PC1", tt.parcel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("写入失败时回滚", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockedCardQuery).
			WillReturnRows(sqlmock.NewRows([]string{"plan_card_id", "mails_used"}).AddRow("PC1", 4))
		mock.ExpectExec(`UPDATE "plan_cards"`).WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		_, err := store.BumpUsage(ctx, "PC1", false)
		assert.EqualError(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_CreatePlanCard(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "plan_cards"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := store.CreatePlanCard(context.Background(), &domain.PlanCard{PlanCardID: "PC1", SubscriptionID: "sub-001"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateMailItemExpectedStatus(t *testing.T) {
	ctx := context.Background()
	expect := domain.MailReceived
	status := domain.MailForwarded
	patch := domain.MailItemPatch{ExpectStatus: &expect, Status: &status}

	t.Run("状态条件随更新一起提交", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "mail_log" SET "status"=\$1 WHERE mail_id = \$2 AND status = \$3`).
			WithArgs("forwarded", "ML1", "received").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.UpdateMailItem(ctx, "ML1", patch))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("未命中且记录存在时返回状态冲突", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "mail_log"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "mail_log" WHERE mail_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"mail_id", "status"}).AddRow("ML1", "released"))

		err := store.UpdateMailItem(ctx, "ML1", patch)
		assert.ErrorIs(t, err, storage.ErrStatusConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("未命中且记录不存在时返回不存在", func(t *testing.T) {
		store, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "mail_log"`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
		mock.ExpectQuery(`SELECT \* FROM "mail_log" WHERE mail_id = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"mail_id"}))

		err := store.UpdateMailItem(ctx, "MLMISSING", patch)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), storage.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)), storage.ErrNotFound)
	assert.ErrorIs(t, translate(gorm.ErrDuplicatedKey), storage.ErrAlreadyExists)

	other := errors.New("deadlock detected")
	assert.Equal(t, other, translate(other))
}
