package memory

import (
	"context"
	"sort"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// CreateRecipient 保存新收件人。
func (s *Store) CreateRecipient(_ context.Context, recipient *domain.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *recipient
	s.recipients[recipient.RecipientID] = &copied
	return nil
}

// GetRecipient 根据 ID 获取收件人。
func (s *Store) GetRecipient(_ context.Context, recipientID string) (*domain.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recipients[recipientID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *r
	return &out, nil
}

// UpdateRecipientStatus 修改收件人状态。
func (s *Store) UpdateRecipientStatus(_ context.Context, recipientID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[recipientID]
	if !ok {
		return storage.ErrNotFound
	}
	r.Status = status
	return nil
}

// UpdateRecipientProfile 修改收件人名称，类型为 nil 时保持不变。
func (s *Store) UpdateRecipientProfile(_ context.Context, recipientID string, name string, recipientType *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[recipientID]
	if !ok {
		return storage.ErrNotFound
	}
	r.Name = name
	if recipientType != nil {
		r.Type = *recipientType
	}
	return nil
}

// MarkRecipientMailLogged 标记收件人已有邮件登记。
func (s *Store) MarkRecipientMailLogged(_ context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recipients[recipientID]
	if !ok {
		return storage.ErrNotFound
	}
	r.HasMailLogged = true
	return nil
}

// CountActiveRecipients 统计套餐卡上有效且非临时的收件人。
func (s *Store) CountActiveRecipients(_ context.Context, planCardID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countActiveRecipientsLocked(planCardID), nil
}

func (s *Store) countActiveRecipientsLocked(planCardID string) int {
	count := 0
	for _, r := range s.recipients {
		if r.PlanCardID == planCardID && r.CountsTowardCapacity() {
			count++
		}
	}
	return count
}

// ListRecipientsByPlanCard 按创建时间升序返回套餐卡下的收件人。
func (s *Store) ListRecipientsByPlanCard(_ context.Context, planCardID string) ([]domain.Recipient, error) {
	return s.filterRecipients(func(r *domain.Recipient) bool { return r.PlanCardID == planCardID }), nil
}

// ListRecipientsBySubscription 返回客户某订阅下的收件人。
func (s *Store) ListRecipientsBySubscription(_ context.Context, clientID, subscriptionID string) ([]domain.Recipient, error) {
	return s.filterRecipients(func(r *domain.Recipient) bool {
		return r.ClientID == clientID && r.SubscriptionID == subscriptionID
	}), nil
}

// ListActiveRecipientsByLocation 返回门店下所有有效收件人。
func (s *Store) ListActiveRecipientsByLocation(_ context.Context, locationID string) ([]domain.Recipient, error) {
	return s.filterRecipients(func(r *domain.Recipient) bool {
		return r.LocationID == locationID && r.Status == domain.RecipientActive
	}), nil
}

func (s *Store) filterRecipients(keep func(*domain.Recipient) bool) []domain.Recipient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Recipient, 0)
	for _, r := range s.recipients {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].RecipientID < out[j].RecipientID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
