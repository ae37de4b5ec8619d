package service

import (
	"context"

	"go.uber.org/zap"

	"mailroom/backend/internal/events"
)

// NotificationService 发出需要下游投递的客户通知事件。
type NotificationService struct {
	*core
}

// NotifyNonPayment 发布欠费提醒事件，实际投递由通知服务完成。
func (s *NotificationService) NotifyNonPayment(ctx context.Context, clientID, subscriptionID, actor string) error {
	if clientID == "" {
		return validation("clientId is required")
	}

	event := events.Event{
		Type:       events.ClientPaymentReminder,
		OccurredAt: s.now(),
		ClientID:   clientID,
		Data: map[string]interface{}{
			"subscriptionId": subscriptionID,
			"requestedBy":    actor,
		},
	}
	err := s.events.Publish(ctx, event)
	s.metrics.EventPublished(event.Type, err == nil)
	if err != nil {
		s.log.Error("failed to publish payment reminder", zap.String("client_id", clientID), zap.Error(err))
		return &Error{Kind: KindStorage, Message: "Failed to queue payment reminder", Err: err}
	}

	s.log.Info("payment reminder queued", zap.String("client_id", clientID), zap.String("subscription_id", subscriptionID))
	return nil
}
