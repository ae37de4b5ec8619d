package postgres

import (
	"context"
	"errors"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// ========== Mail Repository ==========

// CreateMailItem 保存新登记的邮件
func (s *Store) CreateMailItem(ctx context.Context, item *domain.MailItem) error {
	return translate(s.db.WithContext(ctx).Create(item).Error)
}

// GetMailItem 根据 ID 获取邮件
func (s *Store) GetMailItem(ctx context.Context, mailID string) (*domain.MailItem, error) {
	var item domain.MailItem
	if err := s.db.WithContext(ctx).Where("mail_id = ?", mailID).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// UpdateMailItem 对邮件应用部分更新
//
// 设置了 ExpectStatus 时状态条件放进同一条 UPDATE 的 WHERE 中，未命中再区分不存在与状态已变。
func (s *Store) UpdateMailItem(ctx context.Context, mailID string, patch domain.MailItemPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	query := s.db.WithContext(ctx).Model(&domain.MailItem{}).
		Where("mail_id = ?", mailID)
	if patch.ExpectStatus != nil {
		query = query.Where("status = ?", *patch.ExpectStatus)
	}
	err := affected(query.Updates(cols))
	if patch.ExpectStatus == nil || !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	if _, err := s.GetMailItem(ctx, mailID); err != nil {
		return err
	}
	return storage.ErrStatusConflict
}

// ListMail 按登记时间倒序返回满足条件的邮件，排除已删除条目
func (s *Store) ListMail(ctx context.Context, filter storage.MailFilter) ([]domain.MailItem, error) {
	query := s.db.WithContext(ctx).Model(&domain.MailItem{}).
		Where("status <> ?", domain.MailDeleted)
	if filter.ClientID != "" {
		query = query.Where("client_id = ?", filter.ClientID)
	}
	if filter.SubscriptionID != "" {
		query = query.Where("subscription_id = ?", filter.SubscriptionID)
	}
	if filter.LocationID != "" {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.ExceptionsOnly {
		query = query.Where("special_case = ? AND status = ?", true, domain.MailReceived)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var items []domain.MailItem
	err := query.Order("logged_at DESC").Find(&items).Error
	return items, translate(err)
}
