package httptransport

import (
	"context"

	"github.com/gin-gonic/gin"

	"mailroom/backend/internal/service"
)

// ---------- 工作人员读取 ----------

func (h *Handler) getTasks(ctx context.Context, p params) (interface{}, error) {
	tasks, err := h.svc.Tasks.ListForStaff(ctx, p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{"tasks": tasks}, nil
}

// searchRecipients 直接返回数组，不带 status 包装。
func (h *Handler) searchRecipients(ctx context.Context, p params) (interface{}, error) {
	return h.svc.Recipients.Search(ctx, p.String("uuid"), p.String("q"))
}

func (h *Handler) getMailLogStaff(ctx context.Context, p params) (interface{}, error) {
	items, err := h.svc.Mail.ListForStaff(ctx, p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{"mailLog": items}, nil
}

func (h *Handler) getAgentsForPlanCard(ctx context.Context, p params) (interface{}, error) {
	agents, err := h.svc.Agents.ListForPlanCard(ctx, p.String("planCardId"))
	if err != nil {
		return nil, err
	}
	return gin.H{"agents": agents}, nil
}

func (h *Handler) getExceptions(ctx context.Context, p params) (interface{}, error) {
	items, err := h.svc.Mail.ListExceptions(ctx, p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{"exceptions": items}, nil
}

func (h *Handler) getPlanCardsStaff(ctx context.Context, p params) (interface{}, error) {
	cards, err := h.svc.PlanCards.ListForStaff(ctx, p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{"planCards": cards}, nil
}

// ---------- 工作人员写入 ----------

func (h *Handler) logMail(ctx context.Context, p params) (interface{}, error) {
	mailID, err := h.svc.Mail.Log(ctx, service.LogMailInput{
		Actor:             p.String("uuid"),
		LocationID:        p.String("locationId"),
		RecipientID:       p.String("recipientId"),
		RecipientName:     p.String("recipientName"),
		PlanCardID:        p.String("planCardId"),
		ClientID:          p.String("clientId"),
		SubscriptionID:    p.String("subscriptionId"),
		SpecialCase:       p.Bool("specialCase"),
		SpecialCaseReason: p.String("specialCaseReason"),
		Type:              p.String("type"),
		Confidential:      p.Bool("confidential"),
		SenderName:        p.String("senderName"),
		PhysicalLocation:  p.String("physicalLocation"),
		ScanImageURL:      p.String("scanImageUrl"),
		NoteToClient:      p.String("noteToClient"),
		NoteInternal:      p.String("noteInternal"),
		OversizedPickup:   p.Bool("oversizedPickup"),
		PieceCount:        p.Int("pieceCount"),
		EstimatedWeight:   p.String("estimatedWeight"),
		ReturnAddress:     p.String("returnAddress"),
	})
	if err != nil {
		return nil, err
	}
	return gin.H{"mailId": mailID}, nil
}

func (h *Handler) resolveTask(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Tasks.Resolve(ctx, p.String("taskId"), p.String("uuid"), p.String("resolutionNote")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) snoozeTask(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Tasks.Snooze(ctx, p.String("taskId"), p.String("snoozeUntil")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) releaseMail(ctx context.Context, p params) (interface{}, error) {
	err := h.svc.Mail.Release(ctx, service.ReleaseInput{
		MailID:  p.String("mailId"),
		AgentID: p.String("agentId"),
		Notes:   p.String("releaseNotes"),
		Actor:   p.String("uuid"),
	})
	if err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) bulkForwardMail(ctx context.Context, p params) (interface{}, error) {
	mailIDs, ok := p.Strings("mailIds")
	if !ok {
		return nil, &service.Error{Kind: service.KindValidation, Message: MsgInvalidMailIDs}
	}
	results := h.svc.Mail.BulkForward(ctx, service.BulkForwardInput{
		MailIDs:        mailIDs,
		TrackingLink:   p.String("trackingLink"),
		ForwardingCost: p.FloatPtr("forwardingCost"),
		Notes:          p.String("forwardNotes"),
		Actor:          p.String("uuid"),
	})
	return gin.H{"results": results}, nil
}

func (h *Handler) assignMailRecipient(ctx context.Context, p params) (interface{}, error) {
	needsScan, err := h.svc.Mail.Assign(ctx, service.AssignInput{
		MailID:         p.String("mailId"),
		RecipientID:    p.String("recipientId"),
		RecipientName:  p.String("recipientName"),
		PlanCardID:     p.String("planCardId"),
		ClientID:       p.String("clientId"),
		SubscriptionID: p.String("subscriptionId"),
	})
	if err != nil {
		return nil, err
	}
	return gin.H{"needsScan": needsScan}, nil
}

// editMailItem 把整个请求体交给白名单过滤，action、uuid 等字段会被忽略。
func (h *Handler) editMailItem(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Mail.Edit(ctx, p.String("mailId"), p); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) deleteMailItem(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Mail.Delete(ctx, p.String("mailId")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) updateMailStatus(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Mail.SetStatus(ctx, p.String("mailId"), p.String("status"), p.String("note")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) addTempRecipient(ctx context.Context, p params) (interface{}, error) {
	id, err := h.svc.Recipients.AddTemporary(ctx, recipientInput(p))
	if err != nil {
		return nil, err
	}
	return gin.H{"recipientId": id}, nil
}

func (h *Handler) updateRecipient(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Recipients.Update(ctx, p.String("recipientId"), p.String("name"), p.StringPtr("type")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) updateRecipientStatus(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.Recipients.SetStatus(ctx, p.String("recipientId"), p.String("status"), p.String("uuid")); err != nil {
		return nil, err
	}
	return gin.H{}, nil
}

func (h *Handler) notifyNonPayment(ctx context.Context, p params) (interface{}, error) {
	err := h.svc.Notify.NotifyNonPayment(ctx, p.String("clientId"), p.String("subscriptionId"), p.String("uuid"))
	if err != nil {
		return nil, err
	}
	return gin.H{}, nil
}
