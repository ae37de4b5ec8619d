package memory

import (
	"context"
	"sort"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// CreateMailItem 保存新登记的邮件。
func (s *Store) CreateMailItem(_ context.Context, item *domain.MailItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.mail[item.MailID] = &copied
	return nil
}

// GetMailItem 根据 ID 获取邮件，已软删除的条目同样返回。
func (s *Store) GetMailItem(_ context.Context, mailID string) (*domain.MailItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.mail[mailID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *item
	return &out, nil
}

// UpdateMailItem 对邮件应用部分更新，前置状态在同一把锁内检查。
func (s *Store) UpdateMailItem(_ context.Context, mailID string, patch domain.MailItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.mail[mailID]
	if !ok {
		return storage.ErrNotFound
	}
	if !patch.Allows(item.Status) {
		return storage.ErrStatusConflict
	}
	patch.Apply(item)
	return nil
}

// ListMail 按登记时间倒序返回满足条件的邮件。
func (s *Store) ListMail(_ context.Context, filter storage.MailFilter) ([]domain.MailItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]domain.MailItem, 0)
	for _, item := range s.mail {
		if filter.Match(item) {
			items = append(items, *item)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].LoggedAt.Equal(items[j].LoggedAt) {
			return items[i].MailID > items[j].MailID
		}
		return items[i].LoggedAt.After(items[j].LoggedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}
