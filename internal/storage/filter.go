package storage

import (
	"time"

	"mailroom/backend/internal/domain"
)

// PlanCardActivation 记录套餐卡开通信息。
type PlanCardActivation struct {
	At time.Time
	By *string
}

// TaskResolution 记录任务关闭信息。
type TaskResolution struct {
	At   time.Time
	By   string
	Note string
}

// MailFilter 定义邮件列表查询条件，空字段表示不过滤。
type MailFilter struct {
	ClientID       string
	SubscriptionID string
	LocationID     string
	// ExceptionsOnly 仅返回尚未处理的特殊件（special_case 且 received）。
	ExceptionsOnly bool
	Limit          int
}

// Match 判断邮件是否满足过滤条件，供内存实现复用。
func (f MailFilter) Match(item *domain.MailItem) bool {
	if item.Status == domain.MailDeleted {
		return false
	}
	if f.ClientID != "" && item.ClientID != f.ClientID {
		return false
	}
	if f.SubscriptionID != "" && item.SubscriptionID != f.SubscriptionID {
		return false
	}
	if f.LocationID != "" && item.LocationID != f.LocationID {
		return false
	}
	if f.ExceptionsOnly && !(item.SpecialCase && item.Status == domain.MailReceived) {
		return false
	}
	return true
}
