package memory

import (
	"context"
	"sort"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// CreatePlanCard 保存新套餐卡，同一订阅只允许一张。
func (s *Store) CreatePlanCard(_ context.Context, card *domain.PlanCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySubID[card.SubscriptionID]; exists {
		return storage.ErrAlreadyExists
	}
	copied := *card
	s.planCards[card.PlanCardID] = &copied
	s.bySubID[card.SubscriptionID] = card.PlanCardID
	return nil
}

// GetPlanCard 根据 ID 获取套餐卡。
func (s *Store) GetPlanCard(_ context.Context, planCardID string) (*domain.PlanCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.planCards[planCardID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *card
	return &out, nil
}

// GetPlanCardBySubscription 根据订阅 ID 获取套餐卡。
func (s *Store) GetPlanCardBySubscription(_ context.Context, subscriptionID string) (*domain.PlanCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySubID[subscriptionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *s.planCards[id]
	return &out, nil
}

// ListPlanCardsByClient 返回客户的全部套餐卡。
func (s *Store) ListPlanCardsByClient(_ context.Context, clientID string) ([]domain.PlanCard, error) {
	return s.filterPlanCards(func(c *domain.PlanCard) bool { return c.ClientID == clientID }), nil
}

// ListActivePlanCardsByLocation 返回门店下所有有效套餐卡。
func (s *Store) ListActivePlanCardsByLocation(_ context.Context, locationID string) ([]domain.PlanCard, error) {
	return s.filterPlanCards(func(c *domain.PlanCard) bool {
		return c.LocationID == locationID && c.Status == domain.PlanCardStatusActive
	}), nil
}

func (s *Store) filterPlanCards(keep func(*domain.PlanCard) bool) []domain.PlanCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards := make([]domain.PlanCard, 0)
	for _, card := range s.planCards {
		if keep(card) {
			cards = append(cards, *card)
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
	return cards
}

// UpdateFriendlyName 修改套餐卡显示名称。
func (s *Store) UpdateFriendlyName(_ context.Context, planCardID, friendlyName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.planCards[planCardID]
	if !ok {
		return storage.ErrNotFound
	}
	card.FriendlyName = friendlyName
	return nil
}

// ActivatePlanCard 写入开通时间与操作者。
func (s *Store) ActivatePlanCard(_ context.Context, planCardID string, activation storage.PlanCardActivation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.planCards[planCardID]
	if !ok {
		return storage.ErrNotFound
	}
	at := activation.At
	card.ActivatedAt = &at
	card.ActivatedBy = activation.By
	return nil
}

// SyncRecipientCount 以有效非临时收件人数覆盖 recipientsAdded。
func (s *Store) SyncRecipientCount(_ context.Context, planCardID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.planCards[planCardID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	card.RecipientsAdded = s.countActiveRecipientsLocked(planCardID)
	return card.RecipientsAdded, nil
}

// BumpUsage 读取当前用量并写回加一后的值。
func (s *Store) BumpUsage(_ context.Context, planCardID string, parcel bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.planCards[planCardID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	if parcel {
		card.ParcelsUsed++
		return card.ParcelsUsed, nil
	}
	card.MailsUsed++
	return card.MailsUsed, nil
}
