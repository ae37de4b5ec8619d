package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailroom/backend/internal/domain"
)

func TestAgentService(t *testing.T) {
	addAgents := func(t *testing.T, f *fixture, n int) []string {
		ids := make([]string, 0, n)
		for i := 0; i < n; i++ {
			id, err := f.svc.Agents.Add(f.ctx, AddAgentInput{ClientID: testClientID, PlanCardID: "PC1", Name: fmt.Sprintf("Agent %d", i)})
			require.NoError(t, err)
			ids = append(ids, id)
		}
		return ids
	}

	t.Run("第六个有效代领人被拒绝", func(t *testing.T) {
		f := newFixture(t)
		addAgents(t, f, domain.MaxActiveAgents)

		_, err := f.svc.Agents.Add(f.ctx, AddAgentInput{ClientID: testClientID, Name: "Sixth"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCapacityExceeded))
		assert.Equal(t, "Maximum 5 pickup agents allowed.", err.Error())

		agents, err := f.svc.Agents.ListForClient(f.ctx, testClientID)
		require.NoError(t, err)
		assert.Len(t, agents, domain.MaxActiveAgents)
	})

	t.Run("停用一个后可以启用另一个", func(t *testing.T) {
		f := newFixture(t)
		ids := addAgents(t, f, domain.MaxActiveAgents)

		status, err := f.svc.Agents.Toggle(f.ctx, ids[0], testClientID)
		require.NoError(t, err)
		assert.Equal(t, domain.AgentInactive, status)

		agent, err := f.store.GetAgent(f.ctx, ids[0])
		require.NoError(t, err)
		require.NotNil(t, agent.DeactivatedAt)
		require.NotNil(t, agent.DeactivatedBy)
		assert.Equal(t, testClientID, *agent.DeactivatedBy)

		spare, err := f.svc.Agents.Add(f.ctx, AddAgentInput{ClientID: testClientID, Name: "Spare"})
		require.NoError(t, err)

		// 已满 5 个，重新启用被拒绝
		_, err = f.svc.Agents.Toggle(f.ctx, ids[0], testClientID)
		require.Error(t, err)
		assert.Equal(t, "Maximum 5 active agents allowed. Deactivate one first.", err.Error())

		_, err = f.svc.Agents.Toggle(f.ctx, spare, testClientID)
		require.NoError(t, err)
		status, err = f.svc.Agents.Toggle(f.ctx, ids[0], testClientID)
		require.NoError(t, err)
		assert.Equal(t, domain.AgentActive, status)

		agent, err = f.store.GetAgent(f.ctx, ids[0])
		require.NoError(t, err)
		assert.Nil(t, agent.DeactivatedAt)
		assert.Nil(t, agent.DeactivatedBy)
	})

	t.Run("代领人不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Agents.Toggle(f.ctx, "AGTMISSING", testClientID)
		require.Error(t, err)
		assert.Equal(t, "Agent not found", err.Error())
	})

	t.Run("套餐卡只列出有效代领人", func(t *testing.T) {
		f := newFixture(t)
		ids := addAgents(t, f, 2)
		_, err := f.svc.Agents.Toggle(f.ctx, ids[1], testClientID)
		require.NoError(t, err)

		active, err := f.svc.Agents.ListForPlanCard(f.ctx, "PC1")
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, ids[0], active[0].AgentID)

		all, err := f.svc.Agents.ListForClient(f.ctx, testClientID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}
