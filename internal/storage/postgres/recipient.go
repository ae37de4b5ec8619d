package postgres

import (
	"context"

	"mailroom/backend/internal/domain"
)

// ========== Recipient Repository ==========

// CreateRecipient 保存新收件人
func (s *Store) CreateRecipient(ctx context.Context, recipient *domain.Recipient) error {
	return translate(s.db.WithContext(ctx).Create(recipient).Error)
}

// GetRecipient 根据 ID 获取收件人
func (s *Store) GetRecipient(ctx context.Context, recipientID string) (*domain.Recipient, error) {
	var r domain.Recipient
	if err := s.db.WithContext(ctx).Where("recipient_id = ?", recipientID).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// UpdateRecipientStatus 修改收件人状态
func (s *Store) UpdateRecipientStatus(ctx context.Context, recipientID, status string) error {
	result := s.db.WithContext(ctx).Model(&domain.Recipient{}).
		Where("recipient_id = ?", recipientID).
		Update("status", status)
	return affected(result)
}

// UpdateRecipientProfile 修改收件人名称与类型
func (s *Store) UpdateRecipientProfile(ctx context.Context, recipientID string, name string, recipientType *string) error {
	updates := map[string]interface{}{"name": name}
	if recipientType != nil {
		updates["type"] = *recipientType
	}
	result := s.db.WithContext(ctx).Model(&domain.Recipient{}).
		Where("recipient_id = ?", recipientID).
		Updates(updates)
	return affected(result)
}

// MarkRecipientMailLogged 标记收件人已有邮件登记
func (s *Store) MarkRecipientMailLogged(ctx context.Context, recipientID string) error {
	result := s.db.WithContext(ctx).Model(&domain.Recipient{}).
		Where("recipient_id = ?", recipientID).
		Update("has_mail_logged", true)
	return translate(result.Error)
}

// CountActiveRecipients 统计套餐卡上有效且非临时的收件人
func (s *Store) CountActiveRecipients(ctx context.Context, planCardID string) (int, error) {
	var count int64
	err := activeRecipients(s.db.WithContext(ctx), planCardID).Count(&count).Error
	return int(count), translate(err)
}

// ListRecipientsByPlanCard 按创建时间升序返回套餐卡下的收件人
func (s *Store) ListRecipientsByPlanCard(ctx context.Context, planCardID string) ([]domain.Recipient, error) {
	var list []domain.Recipient
	err := s.db.WithContext(ctx).Where("plan_card_id = ?", planCardID).Order("created_at").Find(&list).Error
	return list, translate(err)
}

// ListRecipientsBySubscription 返回客户某订阅下的收件人
func (s *Store) ListRecipientsBySubscription(ctx context.Context, clientID, subscriptionID string) ([]domain.Recipient, error) {
	var list []domain.Recipient
	err := s.db.WithContext(ctx).
		Where("client_id = ? AND subscription_id = ?", clientID, subscriptionID).
		Order("created_at").
		Find(&list).Error
	return list, translate(err)
}

// ListActiveRecipientsByLocation 返回门店下所有有效收件人
func (s *Store) ListActiveRecipientsByLocation(ctx context.Context, locationID string) ([]domain.Recipient, error) {
	var list []domain.Recipient
	err := s.db.WithContext(ctx).
		Where("location_id = ? AND status = ?", locationID, domain.RecipientActive).
		Order("created_at").
		Find(&list).Error
	return list, translate(err)
}

// ========== Agent Repository ==========

// CreateAgent 保存新代领人
func (s *Store) CreateAgent(ctx context.Context, agent *domain.PickupAgent) error {
	return translate(s.db.WithContext(ctx).Create(agent).Error)
}

// GetAgent 根据 ID 获取代领人
func (s *Store) GetAgent(ctx context.Context, agentID string) (*domain.PickupAgent, error) {
	var agent domain.PickupAgent
	if err := s.db.WithContext(ctx).Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return nil, translate(err)
	}
	return &agent, nil
}

// UpdateAgent 保存代领人状态与停用信息
func (s *Store) UpdateAgent(ctx context.Context, agent *domain.PickupAgent) error {
	result := s.db.WithContext(ctx).Model(&domain.PickupAgent{}).
		Where("agent_id = ?", agent.AgentID).
		Updates(map[string]interface{}{
			"status":         agent.Status,
			"deactivated_at": agent.DeactivatedAt,
			"deactivated_by": agent.DeactivatedBy,
		})
	return affected(result)
}

// CountActiveAgents 统计客户名下有效的代领人
func (s *Store) CountActiveAgents(ctx context.Context, clientID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.PickupAgent{}).
		Where("client_id = ? AND status = ?", clientID, domain.AgentActive).
		Count(&count).Error
	return int(count), translate(err)
}

// ListAgentsByClient 按添加时间升序返回客户全部代领人
func (s *Store) ListAgentsByClient(ctx context.Context, clientID string) ([]domain.PickupAgent, error) {
	var list []domain.PickupAgent
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("added_at").Find(&list).Error
	return list, translate(err)
}

// ListActiveAgentsByPlanCard 返回套餐卡下有效的代领人
func (s *Store) ListActiveAgentsByPlanCard(ctx context.Context, planCardID string) ([]domain.PickupAgent, error) {
	var list []domain.PickupAgent
	err := s.db.WithContext(ctx).
		Where("plan_card_id = ? AND status = ?", planCardID, domain.AgentActive).
		Order("added_at").
		Find(&list).Error
	return list, translate(err)
}
