package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
	"mailroom/backend/internal/idgen"
	"mailroom/backend/internal/lock"
	"mailroom/backend/internal/storage"
)

// RecipientService 维护套餐卡下的收件人及其容量计数。
type RecipientService struct {
	*core
	tasks *TaskService
}

// AddRecipientInput 定义添加收件人所需的输入。
type AddRecipientInput struct {
	PlanCardID string `json:"planCardId" validate:"required"`
	Name       string `json:"name" validate:"required,max=255"`
	Type       string `json:"type" validate:"max=30"`
	Language   string `json:"language" validate:"max=10"`
	Notes      string `json:"notes"`
	Actor      string `json:"uuid"`
}

// Add 添加收件人。备注带临时标记的收件人不做容量检查，也不计入 recipientsAdded。
func (s *RecipientService) Add(ctx context.Context, input AddRecipientInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	temporary := strings.HasPrefix(input.Notes, domain.TemporaryMarker)
	if !temporary {
		unlock, err := s.locker.Lock(ctx, lock.PlanCardKey(input.PlanCardID))
		if err != nil {
			return "", storageErr(err)
		}
		defer unlock()
	}

	card, err := s.store.GetPlanCard(ctx, input.PlanCardID)
	if err != nil {
		return "", notFoundOr(err, "Plan card not found")
	}

	if !temporary {
		active, err := s.store.CountActiveRecipients(ctx, card.PlanCardID)
		if err != nil {
			return "", storageErr(err)
		}
		if active >= card.MaxRecipients {
			s.metrics.CapacityRejected("recipient")
			return "", capacityExceeded(fmt.Sprintf(
				"Maximum active recipients reached (%d). Deactivate one first or add as a temporary recipient.",
				card.MaxRecipients))
		}
	}

	now := s.now()
	actor := domain.ClientActor(input.Actor)
	recipient := &domain.Recipient{
		RecipientID:    s.ids.New(idgen.PrefixRecipient),
		PlanCardID:     card.PlanCardID,
		ClientID:       card.ClientID,
		SubscriptionID: card.SubscriptionID,
		LocationID:     card.LocationID,
		Name:           strings.TrimSpace(input.Name),
		Type:           valueOr(input.Type, "individual"),
		Status:         domain.RecipientActive,
		Language:       valueOr(input.Language, "en"),
		Notes:          input.Notes,
		ActivatedAt:    &now,
		ActivatedBy:    actor,
		CreatedAt:      now,
		CreatedBy:      actor,
	}
	if err := s.store.CreateRecipient(ctx, recipient); err != nil {
		return "", storageErr(err)
	}

	s.log.Info("recipient added",
		zap.String("recipient_id", recipient.RecipientID),
		zap.String("plan_card_id", card.PlanCardID),
		zap.Bool("temporary", temporary),
	)

	if temporary {
		return recipient.RecipientID, nil
	}

	count, err := s.store.SyncRecipientCount(ctx, card.PlanCardID)
	if err != nil {
		return "", storageErr(err)
	}

	if card.RecipientsAdded == 0 {
		if err := s.completeSetup(ctx, card, actor, count); err != nil {
			return "", err
		}
	}

	return recipient.RecipientID, nil
}

// AddTemporary 以临时身份添加收件人。
func (s *RecipientService) AddTemporary(ctx context.Context, input AddRecipientInput) (string, error) {
	input.Notes = domain.TemporaryNotes(input.Notes)
	return s.Add(ctx, input)
}

// completeSetup 处理首个收件人：开通套餐卡并关闭客户的待开通任务。
func (s *RecipientService) completeSetup(ctx context.Context, card *domain.PlanCard, actor *string, count int) error {
	now := s.now()
	if err := s.store.ActivatePlanCard(ctx, card.PlanCardID, storage.PlanCardActivation{At: now, By: actor}); err != nil {
		return storageErr(err)
	}

	resolved, err := s.tasks.ResolvePendingSetup(ctx, card.ClientID, "")
	if err != nil {
		return err
	}

	s.log.Info("plan card setup completed",
		zap.String("plan_card_id", card.PlanCardID),
		zap.String("client_id", card.ClientID),
		zap.Int("tasks_resolved", resolved),
	)

	s.publish(ctx, events.Event{
		Type:       events.SetupCompleted,
		ClientID:   card.ClientID,
		PlanCardID: card.PlanCardID,
		Data:       map[string]interface{}{"recipientsAdded": count},
	})
	return nil
}

// SetStatus 修改收件人状态。非临时收件人重新启用时需再次检查容量，成功后重算计数。
func (s *RecipientService) SetStatus(ctx context.Context, recipientID, status, actor string) error {
	if recipientID == "" {
		return validation("recipientId is required")
	}
	if status == "" {
		return validation("status is required")
	}

	recipient, err := s.store.GetRecipient(ctx, recipientID)
	if err != nil {
		return notFoundOr(err, "Recipient not found")
	}

	counted := !recipient.IsTemporary() && recipient.PlanCardID != ""
	if counted {
		unlock, err := s.locker.Lock(ctx, lock.PlanCardKey(recipient.PlanCardID))
		if err != nil {
			return storageErr(err)
		}
		defer unlock()

		// 加锁后重新读取，避免使用等待期间已过期的状态
		if recipient, err = s.store.GetRecipient(ctx, recipientID); err != nil {
			return notFoundOr(err, "Recipient not found")
		}
	}

	if counted && recipient.Status != domain.RecipientActive && status == domain.RecipientActive {
		if err := s.checkReactivation(ctx, recipient.PlanCardID); err != nil {
			return err
		}
	}

	if err := s.store.UpdateRecipientStatus(ctx, recipientID, status); err != nil {
		return notFoundOr(err, "Recipient not found")
	}

	s.log.Info("recipient status changed",
		zap.String("recipient_id", recipientID),
		zap.String("from", recipient.Status),
		zap.String("to", status),
		zap.String("actor", actor),
	)

	if counted {
		if _, err := s.store.SyncRecipientCount(ctx, recipient.PlanCardID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return storageErr(err)
		}
	}
	return nil
}

func (s *RecipientService) checkReactivation(ctx context.Context, planCardID string) error {
	card, err := s.store.GetPlanCard(ctx, planCardID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storageErr(err)
	}

	active, err := s.store.CountActiveRecipients(ctx, planCardID)
	if err != nil {
		return storageErr(err)
	}
	if active >= card.MaxRecipients {
		s.metrics.CapacityRejected("recipient")
		return capacityExceeded(fmt.Sprintf(
			"Cannot reactivate — maximum active recipients reached (%d). Deactivate another first, or add as a temporary recipient.",
			card.MaxRecipients))
	}
	return nil
}

// Update 修改收件人名称，recipientType 为 nil 时保留原类型。
func (s *RecipientService) Update(ctx context.Context, recipientID, name string, recipientType *string) error {
	if recipientID == "" {
		return validation("recipientId is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return validation("name is required")
	}
	if recipientType != nil && *recipientType == "" {
		recipientType = nil
	}

	if err := s.store.UpdateRecipientProfile(ctx, recipientID, name, recipientType); err != nil {
		return notFoundOr(err, "Recipient not found")
	}
	return nil
}

// ListForSubscription 返回客户某订阅下的全部收件人，按创建时间升序。
func (s *RecipientService) ListForSubscription(ctx context.Context, clientID, subscriptionID string) ([]domain.Recipient, error) {
	if clientID == "" {
		return nil, validation("No UUID provided")
	}
	recipients, err := s.store.ListRecipientsBySubscription(ctx, clientID, subscriptionID)
	if err != nil {
		return nil, storageErr(err)
	}
	return recipients, nil
}

// RecipientMatch 是工作人员登记邮件时的收件人检索结果。
type RecipientMatch struct {
	RecipientID     string              `json:"recipientId"`
	Name            string              `json:"name"`
	CompanyName     string              `json:"companyName"`
	Type            string              `json:"type"`
	PlanCardID      string              `json:"planCardId"`
	ClientID        string              `json:"clientId"`
	SubscriptionID  string              `json:"subscriptionId"`
	PlanName        string              `json:"planName"`
	AutoFeature     string              `json:"autoFeature"`
	AccessStatus    domain.AccessStatus `json:"accessStatus"`
	RecipientStatus string              `json:"recipientStatus"`
	PlanStatus      string              `json:"planStatus"`
}

// Search 在工作人员所在门店内检索有效收件人，q 按名称做不区分大小写的包含匹配。
func (s *RecipientService) Search(ctx context.Context, staffID, query string) ([]RecipientMatch, error) {
	locationID, err := s.staffLocation(ctx, staffID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.store.ListActiveRecipientsByLocation(ctx, locationID)
	if err != nil {
		return nil, storageErr(err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	cards := make(map[string]*domain.PlanCard)
	statuses := newAccessStatusMemo(s.store)
	matches := make([]RecipientMatch, 0, len(recipients))

	for i := range recipients {
		r := &recipients[i]
		if query != "" && !strings.Contains(strings.ToLower(r.Name), query) {
			continue
		}

		card, ok := cards[r.PlanCardID]
		if !ok {
			card, err = s.store.GetPlanCard(ctx, r.PlanCardID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, storageErr(err)
			}
			cards[r.PlanCardID] = card
		}
		if card == nil {
			continue
		}

		status, err := statuses.lookup(ctx, card.SubscriptionID)
		if err != nil {
			return nil, err
		}
		if status == "" {
			status = domain.AccessActive
		}

		matches = append(matches, RecipientMatch{
			RecipientID:     r.RecipientID,
			Name:            r.Name,
			Type:            r.Type,
			PlanCardID:      card.PlanCardID,
			ClientID:        card.ClientID,
			SubscriptionID:  card.SubscriptionID,
			PlanName:        card.PlanName,
			AutoFeature:     card.AutoFeature,
			AccessStatus:    status,
			RecipientStatus: r.Status,
			PlanStatus:      card.Status,
		})
	}
	return matches, nil
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
