package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/storage"
)

// CreatePlanCard 保存新套餐卡，subscription_id 唯一索引保证一订阅一卡
func (s *Store) CreatePlanCard(ctx context.Context, card *domain.PlanCard) error {
	return translate(s.db.WithContext(ctx).Create(card).Error)
}

// GetPlanCard 根据 ID 获取套餐卡
func (s *Store) GetPlanCard(ctx context.Context, planCardID string) (*domain.PlanCard, error) {
	var card domain.PlanCard
	if err := s.db.WithContext(ctx).Where("plan_card_id = ?", planCardID).First(&card).Error; err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

// GetPlanCardBySubscription 根据订阅 ID 获取套餐卡
func (s *Store) GetPlanCardBySubscription(ctx context.Context, subscriptionID string) (*domain.PlanCard, error) {
	var card domain.PlanCard
	if err := s.db.WithContext(ctx).Where("subscription_id = ?", subscriptionID).First(&card).Error; err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

// ListPlanCardsByClient 返回客户的全部套餐卡
func (s *Store) ListPlanCardsByClient(ctx context.Context, clientID string) ([]domain.PlanCard, error) {
	var cards []domain.PlanCard
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at").Find(&cards).Error
	return cards, translate(err)
}

// ListActivePlanCardsByLocation 返回门店下所有有效套餐卡
func (s *Store) ListActivePlanCardsByLocation(ctx context.Context, locationID string) ([]domain.PlanCard, error) {
	var cards []domain.PlanCard
	err := s.db.WithContext(ctx).
		Where("location_id = ? AND status = ?", locationID, domain.PlanCardStatusActive).
		Order("created_at").
		Find(&cards).Error
	return cards, translate(err)
}

// UpdateFriendlyName 修改套餐卡显示名称
func (s *Store) UpdateFriendlyName(ctx context.Context, planCardID, friendlyName string) error {
	result := s.db.WithContext(ctx).Model(&domain.PlanCard{}).
		Where("plan_card_id = ?", planCardID).
		Update("friendly_name", friendlyName)
	return affected(result)
}

// ActivatePlanCard 写入开通时间与操作者
func (s *Store) ActivatePlanCard(ctx context.Context, planCardID string, activation storage.PlanCardActivation) error {
	result := s.db.WithContext(ctx).Model(&domain.PlanCard{}).
		Where("plan_card_id = ?", planCardID).
		Updates(map[string]interface{}{
			"activated_at": activation.At,
			"activated_by": activation.By,
		})
	return affected(result)
}

// SyncRecipientCount 在锁定套餐卡行的事务内重算并覆盖 recipients_added
func (s *Store) SyncRecipientCount(ctx context.Context, planCardID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockPlanCard(tx, planCardID); err != nil {
			return err
		}
		if err := activeRecipients(tx, planCardID).Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&domain.PlanCard{}).
			Where("plan_card_id = ?", planCardID).
			Update("recipients_added", count).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return int(count), nil
}

// BumpUsage 在行锁内读取当前用量并写回加一后的值
func (s *Store) BumpUsage(ctx context.Context, planCardID string, parcel bool) (int, error) {
	var next int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		card, err := lockPlanCard(tx, planCardID)
		if err != nil {
			return err
		}
		column := "mails_used"
		next = card.MailsUsed + 1
		if parcel {
			column = "parcels_used"
			next = card.ParcelsUsed + 1
		}
		return tx.Model(&domain.PlanCard{}).
			Where("plan_card_id = ?", planCardID).
			Update(column, next).Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return next, nil
}

// lockPlanCard 以 SELECT ... FOR UPDATE 读取套餐卡
func lockPlanCard(tx *gorm.DB, planCardID string) (*domain.PlanCard, error) {
	var card domain.PlanCard
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("plan_card_id = ?", planCardID).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

// activeRecipients 返回有效且非临时收件人的查询
func activeRecipients(tx *gorm.DB, planCardID string) *gorm.DB {
	return tx.Model(&domain.Recipient{}).
		Where("plan_card_id = ? AND status = ?", planCardID, domain.RecipientActive).
		Where("(notes IS NULL OR notes NOT LIKE ?)", domain.TemporaryMarker+"%")
}
