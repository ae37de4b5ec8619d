package httptransport

import (
	"context"

	"github.com/gin-gonic/gin"

	"mailroom/backend/internal/service"
)

// ---------- 客户读取 ----------

func (h *Handler) getClientMailLog(ctx context.Context, p params) (interface{}, error) {
	items, err := h.svc.Mail.ListForClient(ctx, p.String("uuid"), p.String("subscriptionId"))
	if err != nil {
		return nil, err
	}
	return gin.H{"mailLog": items}, nil
}

func (h *Handler) getPlanCard(ctx context.Context, p params) (interface{}, error) {
	card, err := h.svc.PlanCards.Get(ctx, p.String("uuid"), p.String("subscriptionId"))
	if err != nil {
		return nil, err
	}
	return gin.H{"planCard": card}, nil
}

func (h *Handler) getAgents(ctx context.Context, p params) (interface{}, error) {
	agents, err := h.svc.Agents.ListForClient(ctx, p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{"agents": agents}, nil
}

func (h *Handler) getRecipients(ctx context.Context, p params) (interface{}, error) {
	recipients, err := h.svc.Recipients.ListForSubscription(ctx, p.String("uuid"), p.String("subscriptionId"))
	if err != nil {
		return nil, err
	}
	return gin.H{"recipients": recipients}, nil
}

func (h *Handler) getPlanTemplate(ctx context.Context, p params) (interface{}, error) {
	view, err := h.svc.Onboarding.PlanTemplate(ctx, p.String("productId"))
	if err != nil {
		return nil, err
	}
	return gin.H{"template": view.Template, "locations": view.Locations}, nil
}

// ---------- 客户写入 ----------

func (h *Handler) submitOnboarding(ctx context.Context, p params) (interface{}, error) {
	id, err := h.svc.Onboarding.Submit(ctx, service.SubmitOnboardingInput{
		ClientID:               p.String("uuid"),
		SubscriptionID:         p.String("subscriptionId"),
		ProductID:              p.String("productId"),
		LocationID:             p.String("locationId"),
		ForwardingAddress:      p.String("forwardingAddress"),
		ForwardingCity:         p.String("forwardingCity"),
		ForwardingProvince:     p.String("forwardingProvince"),
		ForwardingPostalCode:   p.String("forwardingPostalCode"),
		ForwardingCountry:      p.String("forwardingCountry"),
		ForwardingInstructions: p.String("forwardingInstructions"),
		ClientTimezone:         p.String("clientTimezone"),
		CustomerType:           p.String("customerType"),
		BusinessDescription:    p.String("businessDescription"),
		ReferralSource:         p.String("referralSource"),
		FriendlyName:           p.String("friendlyName"),
	})
	if err != nil {
		return nil, err
	}
	return gin.H{"planCardId": id}, nil
}

func (h *Handler) addRecipient(ctx context.Context, p params) (interface{}, error) {
	id, err := h.svc.Recipients.Add(ctx, recipientInput(p))
	if err != nil {
		return nil, err
	}
	return gin.H{"recipientId": id}, nil
}

func recipientInput(p params) service.AddRecipientInput {
	return service.AddRecipientInput{
		PlanCardID: p.String("planCardId"),
		Name:       p.String("name"),
		Type:       p.String("type"),
		Language:   p.String("language"),
		Notes:      p.String("notes"),
		Actor:      p.String("uuid"),
	}
}

func (h *Handler) updateFriendlyName(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.PlanCards.UpdateFriendlyName(ctx, p.String("planCardId"), p.String("friendlyName")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) addAgent(ctx context.Context, p params) (interface{}, error) {
	id, err := h.svc.Agents.Add(ctx, service.AddAgentInput{
		ClientID:   p.String("uuid"),
		PlanCardID: p.String("planCardId"),
		LocationID: p.String("locationId"),
		Name:       p.String("name"),
		IDType:     p.String("idType"),
		IDLast4:    p.String("idLast4"),
		Phone:      p.String("phone"),
		Notes:      p.String("notes"),
	})
	if err != nil {
		return nil, err
	}
	return gin.H{"agentId": id}, nil
}

// removeAgent 在有效与停用之间切换，返回切换后的状态。
func (h *Handler) removeAgent(ctx context.Context, p params) (interface{}, error) {
	status, err := h.svc.Agents.Toggle(ctx, p.String("agentId"), p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{"newStatus": status}, nil
}
