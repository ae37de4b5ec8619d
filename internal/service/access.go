package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// AccessKind 区分访问结果的类型。
type AccessKind string

const (
	AccessStaff   AccessKind = "staff"
	AccessClient  AccessKind = "client"
	AccessBlocked AccessKind = "blocked"
)

// BlockedMessage 不区分账号不存在与已停用，避免泄露账号是否存在。
const BlockedMessage = "Account not found or inactive."

// StaffView 是工作人员登录后看到的信息。
type StaffView struct {
	Role       string `json:"role"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	StaffID    string `json:"staffId"`
	LocationID string `json:"locationId"`
	Pin        string `json:"pin"`
}

// SubscriptionView 是单个订阅的访问状态。
type SubscriptionView struct {
	SubscriptionID string              `json:"subscriptionId"`
	PlanName       string              `json:"planName"`
	PlanAmount     int64               `json:"planAmount"`
	Interval       string              `json:"interval"`
	ProductID      string              `json:"productId"`
	AccessStatus   domain.AccessStatus `json:"accessStatus"`
	CanAccess      bool                `json:"canAccess"`
	SetupRequired  bool                `json:"setupRequired"`
	SetupStep      *domain.SetupStep   `json:"setupStep"`
	PlanCardID     *string             `json:"planCardId"`
	FriendlyName   *string             `json:"friendlyName"`
	Banner         *domain.Banner      `json:"banner"`
}

// ClientView 是客户登录后看到的信息，订阅按创建时间倒序。
type ClientView struct {
	ClientID      string             `json:"clientId"`
	Name          string             `json:"name"`
	GivenName     string             `json:"givenName"`
	FamilyName    string             `json:"familyName"`
	Email         string             `json:"email"`
	FallbackColor string             `json:"fallbackColor"`
	Subscriptions []SubscriptionView `json:"subscriptions"`
}

// AccessView 是访问解析的结果，Kind 决定哪一个字段有效。
type AccessView struct {
	Kind    AccessKind
	Staff   *StaffView
	Client  *ClientView
	Message string
}

// MarshalJSON 输出带 status 判别字段的扁平对象。
func (v AccessView) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AccessStaff:
		return json.Marshal(struct {
			Status AccessKind `json:"status"`
			*StaffView
		}{v.Kind, v.Staff})
	case AccessClient:
		return json.Marshal(struct {
			Status AccessKind `json:"status"`
			*ClientView
		}{v.Kind, v.Client})
	default:
		return json.Marshal(struct {
			Status  AccessKind `json:"status"`
			Message string     `json:"message"`
		}{AccessBlocked, v.Message})
	}
}

// AccessService 根据账号标识判断调用方身份与可见内容。
type AccessService struct {
	*core
}

// Resolve 解析账号：有效工作人员优先，其次为有效客户，否则返回 blocked。
func (s *AccessService) Resolve(ctx context.Context, accountID string) (*AccessView, error) {
	if accountID == "" {
		return nil, validation("No UUID provided")
	}

	staff, err := s.store.GetActiveStaff(ctx, accountID)
	switch {
	case err == nil:
		return &AccessView{Kind: AccessStaff, Staff: &StaffView{
			Role:       staff.Role,
			Name:       staff.Name,
			Email:      staff.Email,
			StaffID:    staff.StaffID,
			LocationID: staff.DefaultLocationID,
			Pin:        staff.Pin,
		}}, nil
	case !errors.Is(err, storage.ErrNotFound):
		return nil, storageErr(err)
	}

	client, err := s.store.GetClient(ctx, accountID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, storageErr(err)
	}
	if client == nil || !client.IsActive() {
		s.log.Info("access blocked", zap.String("account_id", accountID))
		return &AccessView{Kind: AccessBlocked, Message: BlockedMessage}, nil
	}

	subs, err := s.store.ListSubscriptionsByClient(ctx, client.ID)
	if err != nil {
		return nil, storageErr(err)
	}
	cards, err := s.store.ListPlanCardsByClient(ctx, client.ID)
	if err != nil {
		return nil, storageErr(err)
	}

	bySubscription := make(map[string]*domain.PlanCard, len(cards))
	for i := range cards {
		bySubscription[cards[i].SubscriptionID] = &cards[i]
	}

	views := make([]SubscriptionView, 0, len(subs))
	for i := range subs {
		views = append(views, s.subscriptionView(&subs[i], bySubscription[subs[i].ID]))
	}

	return &AccessView{Kind: AccessClient, Client: &ClientView{
		ClientID:      client.ID,
		Name:          client.DisplayName(),
		GivenName:     client.GivenName,
		FamilyName:    client.FamilyName,
		Email:         client.Email,
		FallbackColor: client.FallbackColor,
		Subscriptions: views,
	}}, nil
}

func (s *AccessService) subscriptionView(sub *domain.Subscription, card *domain.PlanCard) SubscriptionView {
	status := domain.NormalizeAccessStatus(sub.AccessStatus)
	canAccess := status.CanAccess()
	setupRequired := canAccess && (card == nil || card.RecipientsAdded == 0)

	view := SubscriptionView{
		SubscriptionID: sub.ID,
		PlanName:       sub.PlanName,
		PlanAmount:     sub.PlanAmount,
		Interval:       sub.Interval,
		ProductID:      sub.ProductID,
		AccessStatus:   status,
		CanAccess:      canAccess,
		SetupRequired:  setupRequired,
	}

	if setupRequired {
		step := domain.SetupStepRecipients
		if card == nil {
			step = domain.SetupStepPlan
		}
		view.SetupStep = &step
	}

	if card != nil {
		id := card.PlanCardID
		view.PlanCardID = &id
		if card.FriendlyName != "" {
			name := card.FriendlyName
			view.FriendlyName = &name
		}
	}

	view.Banner = s.banner(status, sub, view.SetupStep)
	return view
}

// banner 按 付款失败 > 即将到期 > 已取消 > 待开通 的顺序返回唯一横幅。
func (s *AccessService) banner(status domain.AccessStatus, sub *domain.Subscription, setupStep *domain.SetupStep) *domain.Banner {
	portal := s.billing.PortalURL
	switch status {
	case domain.AccessPaymentRequired:
		return &domain.Banner{
			Type:        domain.BannerPaymentRequired,
			Title:       "Payment Required",
			Message:     "Your payment could not be processed. Please update your payment method.",
			ActionLabel: "Update Payment",
			ActionURL:   portal,
		}
	case domain.AccessCanceledWithAccess:
		until := ""
		if sub.AccessUntilDate != nil {
			until = sub.AccessUntilDate.UTC().Format("Jan 2, 2006")
		}
		return &domain.Banner{
			Type:        domain.BannerCanceledWithAccess,
			Title:       "Subscription Ending",
			Message:     fmt.Sprintf("Your subscription is ending on %s. Renew to keep access.", until),
			ActionLabel: "Renew",
			ActionURL:   portal,
		}
	case domain.AccessCanceled:
		return &domain.Banner{
			Type:        domain.BannerCanceled,
			Title:       "Subscription Ended",
			Message:     "Your subscription has ended. Reactivate to regain access.",
			ActionLabel: "Reactivate",
			ActionURL:   portal,
		}
	}

	if setupStep != nil {
		return &domain.Banner{
			Type:        domain.BannerSetupRequired,
			Title:       "Setup Required",
			Message:     "Complete your mailbox setup to start receiving mail.",
			ActionLabel: "Set Up Now",
			SetupStep:   *setupStep,
		}
	}
	return nil
}
