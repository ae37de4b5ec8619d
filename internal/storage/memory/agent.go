package memory

import (
	"context"
	"sort"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// CreateAgent 保存新代领人。
func (s *Store) CreateAgent(_ context.Context, agent *domain.PickupAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *agent
	s.agents[agent.AgentID] = &copied
	return nil
}

// GetAgent 根据 ID 获取代领人。
func (s *Store) GetAgent(_ context.Context, agentID string) (*domain.PickupAgent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[agentID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *agent
	return &out, nil
}

// UpdateAgent 保存代领人的状态与停用信息。
func (s *Store) UpdateAgent(_ context.Context, agent *domain.PickupAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.agents[agent.AgentID]; !ok {
		return storage.ErrNotFound
	}
	copied := *agent
	s.agents[agent.AgentID] = &copied
	return nil
}

// CountActiveAgents 统计客户名下有效的代领人。
func (s *Store) CountActiveAgents(_ context.Context, clientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, agent := range s.agents {
		if agent.ClientID == clientID && agent.IsActive() {
			count++
		}
	}
	return count, nil
}

// ListAgentsByClient 按添加时间升序返回客户全部代领人。
func (s *Store) ListAgentsByClient(_ context.Context, clientID string) ([]domain.PickupAgent, error) {
	return s.filterAgents(func(a *domain.PickupAgent) bool { return a.ClientID == clientID }), nil
}

// ListActiveAgentsByPlanCard 返回套餐卡下有效的代领人。
func (s *Store) ListActiveAgentsByPlanCard(_ context.Context, planCardID string) ([]domain.PickupAgent, error) {
	return s.filterAgents(func(a *domain.PickupAgent) bool {
		return a.PlanCardID == planCardID && a.IsActive()
	}), nil
}

func (s *Store) filterAgents(keep func(*domain.PickupAgent) bool) []domain.PickupAgent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PickupAgent, 0)
	for _, agent := range s.agents {
		if keep(agent) {
			out = append(out, *agent)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AgentID < out[j].AgentID
		}
		return out[i].AddedAt.Before(out[j].AddedAt)
	})
	return out
}
