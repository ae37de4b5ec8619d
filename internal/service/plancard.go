package service

import (
	"context"
	"errors"
	"strings"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// PlanCardService 提供套餐卡查询与显示名称修改。
type PlanCardService struct {
	*core
}

// Get 返回客户某订阅的套餐卡，不存在或不属于该客户时返回 nil。
func (s *PlanCardService) Get(ctx context.Context, clientID, subscriptionID string) (*domain.PlanCard, error) {
	if clientID == "" {
		return nil, validation("No UUID provided")
	}
	card, err := s.store.GetPlanCardBySubscription(ctx, subscriptionID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, nil
	case err != nil:
		return nil, storageErr(err)
	}
	if card.ClientID != clientID {
		return nil, nil
	}
	return card, nil
}

// UpdateFriendlyName 修改套餐卡显示名称。
func (s *PlanCardService) UpdateFriendlyName(ctx context.Context, planCardID, friendlyName string) error {
	if planCardID == "" {
		return validation("planCardId is required")
	}
	friendlyName = strings.TrimSpace(friendlyName)
	if len(friendlyName) > 255 {
		return validation("friendlyName must be at most 255 characters")
	}
	if err := s.store.UpdateFriendlyName(ctx, planCardID, friendlyName); err != nil {
		return notFoundOr(err, "Plan card not found")
	}
	return nil
}

// StaffPlanCard 是工作人员看板中的套餐卡，附带客户、订阅与收件人信息。
type StaffPlanCard struct {
	domain.PlanCard
	ClientName           string              `json:"clientName"`
	ClientEmail          string              `json:"clientEmail"`
	ClientColor          string              `json:"clientColor"`
	AccessStatus         domain.AccessStatus `json:"accessStatus"`
	SubscriptionPlanName string              `json:"subscriptionPlanName"`
	PlanAmountFormatted  string              `json:"planAmountFormatted"`
	Recipients           []domain.Recipient  `json:"recipients"`
}

// ListForStaff 返回工作人员所在门店的有效套餐卡。
func (s *PlanCardService) ListForStaff(ctx context.Context, staffID string) ([]StaffPlanCard, error) {
	locationID, err := s.staffLocation(ctx, staffID)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListActivePlanCardsByLocation(ctx, locationID)
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]StaffPlanCard, 0, len(cards))
	for _, card := range cards {
		row := StaffPlanCard{PlanCard: card, AccessStatus: domain.AccessActive}

		client, err := s.store.GetClient(ctx, card.ClientID)
		switch {
		case err == nil:
			row.ClientName = client.DisplayName()
			row.ClientEmail = client.Email
			row.ClientColor = client.FallbackColor
		case !errors.Is(err, storage.ErrNotFound):
			return nil, storageErr(err)
		}

		sub, err := s.store.GetSubscription(ctx, card.SubscriptionID)
		switch {
		case err == nil:
			row.AccessStatus = domain.NormalizeAccessStatus(sub.AccessStatus)
			row.SubscriptionPlanName = sub.PlanName
			row.PlanAmountFormatted = sub.PlanAmountFormatted
		case !errors.Is(err, storage.ErrNotFound):
			return nil, storageErr(err)
		}

		if row.Recipients, err = s.store.ListRecipientsByPlanCard(ctx, card.PlanCardID); err != nil {
			return nil, storageErr(err)
		}
		out = append(out, row)
	}
	return out, nil
}
