package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/idgen"
	"mailroom/backend/internal/lock"
)

// AgentService 管理客户授权的代领人，每个客户最多同时有效 5 人。
type AgentService struct {
	*core
}

// AddAgentInput 定义添加代领人所需的输入。
type AddAgentInput struct {
	ClientID   string `json:"uuid" validate:"required"`
	PlanCardID string `json:"planCardId"`
	LocationID string `json:"locationId"`
	Name       string `json:"name" validate:"required,max=255"`
	IDType     string `json:"idType" validate:"max=50"`
	IDLast4    string `json:"idLast4" validate:"max=4"`
	Phone      string `json:"phone" validate:"max=50"`
	Notes      string `json:"notes"`
}

// Add 添加一名有效代领人。
func (s *AgentService) Add(ctx context.Context, input AddAgentInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	unlock, err := s.locker.Lock(ctx, lock.ClientAgentsKey(input.ClientID))
	if err != nil {
		return "", storageErr(err)
	}
	defer unlock()

	active, err := s.store.CountActiveAgents(ctx, input.ClientID)
	if err != nil {
		return "", storageErr(err)
	}
	if active >= domain.MaxActiveAgents {
		s.metrics.CapacityRejected("agent")
		return "", capacityExceeded(fmt.Sprintf("Maximum %d pickup agents allowed.", domain.MaxActiveAgents))
	}

	addedBy := input.ClientID
	agent := &domain.PickupAgent{
		AgentID:    s.ids.New(idgen.PrefixAgent),
		PlanCardID: input.PlanCardID,
		ClientID:   input.ClientID,
		LocationID: input.LocationID,
		Name:       strings.TrimSpace(input.Name),
		IDType:     input.IDType,
		IDLast4:    input.IDLast4,
		Phone:      input.Phone,
		Status:     domain.AgentActive,
		Notes:      input.Notes,
		AddedAt:    s.now(),
		AddedBy:    &addedBy,
	}
	if err := s.store.CreateAgent(ctx, agent); err != nil {
		return "", storageErr(err)
	}

	s.log.Info("pickup agent added",
		zap.String("agent_id", agent.AgentID),
		zap.String("client_id", agent.ClientID),
	)
	return agent.AgentID, nil
}

// Toggle 在有效与停用之间切换代领人状态，返回切换后的状态。
func (s *AgentService) Toggle(ctx context.Context, agentID, actor string) (string, error) {
	if agentID == "" {
		return "", validation("agentId is required")
	}

	agent, err := s.store.GetAgent(ctx, agentID)
	if err != nil {
		return "", notFoundOr(err, "Agent not found")
	}

	unlock, err := s.locker.Lock(ctx, lock.ClientAgentsKey(agent.ClientID))
	if err != nil {
		return "", storageErr(err)
	}
	defer unlock()

	if agent, err = s.store.GetAgent(ctx, agentID); err != nil {
		return "", notFoundOr(err, "Agent not found")
	}

	if agent.IsActive() {
		now := s.now()
		by := actor
		agent.Status = domain.AgentInactive
		agent.DeactivatedAt = &now
		agent.DeactivatedBy = &by
	} else {
		active, err := s.store.CountActiveAgents(ctx, agent.ClientID)
		if err != nil {
			return "", storageErr(err)
		}
		if active >= domain.MaxActiveAgents {
			s.metrics.CapacityRejected("agent")
			return "", capacityExceeded(fmt.Sprintf(
				"Maximum %d active agents allowed. Deactivate one first.", domain.MaxActiveAgents))
		}
		agent.Status = domain.AgentActive
		agent.DeactivatedAt = nil
		agent.DeactivatedBy = nil
	}

	if err := s.store.UpdateAgent(ctx, agent); err != nil {
		return "", notFoundOr(err, "Agent not found")
	}

	s.log.Info("pickup agent toggled",
		zap.String("agent_id", agentID),
		zap.String("status", agent.Status),
	)
	return agent.Status, nil
}

// ListForClient 返回客户的全部代领人（含停用），按添加时间升序。
func (s *AgentService) ListForClient(ctx context.Context, clientID string) ([]domain.PickupAgent, error) {
	if clientID == "" {
		return nil, validation("No UUID provided")
	}
	agents, err := s.store.ListAgentsByClient(ctx, clientID)
	if err != nil {
		return nil, storageErr(err)
	}
	return agents, nil
}

// ListForPlanCard 返回套餐卡下的有效代领人。
func (s *AgentService) ListForPlanCard(ctx context.Context, planCardID string) ([]domain.PickupAgent, error) {
	if planCardID == "" {
		return nil, validation("planCardId is required")
	}
	agents, err := s.store.ListActiveAgentsByPlanCard(ctx, planCardID)
	if err != nil {
		return nil, storageErr(err)
	}
	return agents, nil
}
