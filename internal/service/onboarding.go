package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
	"mailroom/backend/internal/idgen"
	"mailroom/backend/internal/storage"
)

// setupTaskDueDays 是待开通任务的处理期限。
const setupTaskDueDays = 3

// OnboardingService 处理客户开通邮箱：依据套餐目录创建套餐卡并登记待开通任务。
type OnboardingService struct {
	*core
}

// SubmitOnboardingInput 定义开通邮箱所需的输入。
type SubmitOnboardingInput struct {
	ClientID               string `json:"uuid" validate:"required"`
	SubscriptionID         string `json:"subscriptionId" validate:"required"`
	ProductID              string `json:"productId" validate:"required"`
	LocationID             string `json:"locationId"`
	ForwardingAddress      string `json:"forwardingAddress" validate:"max=500"`
	ForwardingCity         string `json:"forwardingCity" validate:"max=100"`
	ForwardingProvince     string `json:"forwardingProvince" validate:"max=100"`
	ForwardingPostalCode   string `json:"forwardingPostalCode" validate:"max=20"`
	ForwardingCountry      string `json:"forwardingCountry" validate:"max=100"`
	ForwardingInstructions string `json:"forwardingInstructions"`
	ClientTimezone         string `json:"clientTimezone"`
	CustomerType           string `json:"customerType"`
	BusinessDescription    string `json:"businessDescription"`
	ReferralSource         string `json:"referralSource"`
	FriendlyName           string `json:"friendlyName" validate:"max=255"`
}

// Submit 为订阅创建套餐卡，每个订阅只能有一张。返回套餐卡 ID。
func (s *OnboardingService) Submit(ctx context.Context, input SubmitOnboardingInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	tpl, err := s.store.GetPlanTemplate(ctx, input.ProductID)
	if err != nil {
		return "", notFoundOr(err, "Plan template not found")
	}

	if _, err := s.store.GetPlanCardBySubscription(ctx, input.SubscriptionID); err == nil {
		return "", validation("Plan card already exists for this subscription")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return "", storageErr(err)
	}

	now := s.now()
	today := domain.Today(now)
	card := &domain.PlanCard{
		PlanCardID:             s.ids.New(idgen.PrefixPlanCard),
		ClientID:               input.ClientID,
		SubscriptionID:         input.SubscriptionID,
		LocationID:             valueOr(input.LocationID, s.onboarding.DefaultLocation),
		ProductID:              tpl.ProductID,
		PlanName:               tpl.PlanName,
		BillingCycle:           tpl.BillingCycle,
		Status:                 domain.PlanCardStatusActive,
		MailLimit:              tpl.MailLimit,
		ParcelLimit:            tpl.ParcelsIncluded,
		MaxRecipients:          tpl.MaxRecipients,
		MailStorageDays:        tpl.MailStorageDays,
		ParcelStorageDays:      tpl.ParcelStorageDays,
		MailOverageFee:         tpl.MailOverageFee,
		ParcelOverageFee:       tpl.ParcelOverageFee,
		CurrentPeriodStart:     domain.FormatDate(today),
		CurrentPeriodEnd:       domain.FormatDate(domain.BillingPeriodEnd(today, tpl.BillingCycle)),
		AutoForwardDay:         tpl.AutoForwardDay,
		AutoFeature:            tpl.AutoFeature,
		PlanMemo:               tpl.PlanMemo,
		ForwardingAddress:      input.ForwardingAddress,
		ForwardingCity:         input.ForwardingCity,
		ForwardingProvince:     input.ForwardingProvince,
		ForwardingPostalCode:   input.ForwardingPostalCode,
		ForwardingCountry:      input.ForwardingCountry,
		ForwardingInstructions: input.ForwardingInstructions,
		ClientTimezone:         valueOr(input.ClientTimezone, s.onboarding.DefaultTimezone),
		CustomerType:           valueOr(input.CustomerType, s.onboarding.DefaultCustomerType),
		BusinessDescription:    input.BusinessDescription,
		ReferralSource:         input.ReferralSource,
		FriendlyName:           input.FriendlyName,
		CreatedAt:              now,
	}
	if err := s.store.CreatePlanCard(ctx, card); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return "", validation("Plan card already exists for this subscription")
		}
		return "", storageErr(err)
	}

	if err := s.openSetupTask(ctx, card); err != nil {
		return "", err
	}

	s.log.Info("plan card created",
		zap.String("plan_card_id", card.PlanCardID),
		zap.String("client_id", card.ClientID),
		zap.String("product_id", card.ProductID),
		zap.String("period_end", card.CurrentPeriodEnd),
	)

	s.publish(ctx, events.Event{
		Type:       events.PlanCardCreated,
		ClientID:   card.ClientID,
		PlanCardID: card.PlanCardID,
		Data: map[string]interface{}{
			"subscriptionId": card.SubscriptionID,
			"locationId":     card.LocationID,
			"planName":       card.PlanName,
		},
	})

	return card.PlanCardID, nil
}

// openSetupTask 登记待开通任务，首个收件人添加后自动关闭。
func (s *OnboardingService) openSetupTask(ctx context.Context, card *domain.PlanCard) error {
	who := card.ClientID
	client, err := s.store.GetClient(ctx, card.ClientID)
	switch {
	case err == nil:
		if name := client.DisplayName(); name != "" {
			who = name
		}
	case !errors.Is(err, storage.ErrNotFound):
		return storageErr(err)
	}

	now := s.now()
	task := &domain.Task{
		TaskID:      s.ids.New(idgen.PrefixTask),
		Type:        domain.TaskTypePendingSetup,
		Status:      domain.TaskOpen,
		ClientID:    card.ClientID,
		PlanCardID:  card.PlanCardID,
		LocationID:  card.LocationID,
		Title:       fmt.Sprintf("Pending setup: %s", who),
		Description: fmt.Sprintf("%s (%s) has no recipients yet.", who, card.PlanName),
		DueDate:     domain.AddDays(domain.Today(now), setupTaskDueDays),
		CreatedAt:   now,
		CreatedBy:   "system",
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return storageErr(err)
	}
	return nil
}

// PlanTemplateView 是开通页面需要的套餐与可选门店。
type PlanTemplateView struct {
	Template  *domain.PlanTemplate `json:"template"`
	Locations []domain.Location    `json:"locations"`
}

// PlanTemplate 返回套餐模板及其可用门店，模板不存在时 Template 为 nil。
func (s *OnboardingService) PlanTemplate(ctx context.Context, productID string) (*PlanTemplateView, error) {
	if productID == "" {
		return nil, validation("No productId")
	}

	tpl, err := s.store.GetPlanTemplate(ctx, productID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, storageErr(err)
	}

	locations, err := s.store.ListActiveLocations(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	if tpl != nil {
		if allowed := tpl.LocationIDs(); len(allowed) > 0 {
			set := make(map[string]struct{}, len(allowed))
			for _, id := range allowed {
				set[id] = struct{}{}
			}
			filtered := make([]domain.Location, 0, len(locations))
			for _, loc := range locations {
				if _, ok := set[loc.LocationID]; ok {
					filtered = append(filtered, loc)
				}
			}
			locations = filtered
		}
	}

	if locations == nil {
		locations = []domain.Location{}
	}
	return &PlanTemplateView{Template: tpl, Locations: locations}, nil
}
