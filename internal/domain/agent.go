package domain

import "time"

// MaxActiveAgents 是每个客户最多同时有效的代领人数。
const MaxActiveAgents = 5

// 代领人状态
const (
	AgentActive   = "active"
	AgentInactive = "inactive"
)

// PickupAgent 表示客户授权代取邮件的人。
type PickupAgent struct {
	AgentID       string     `json:"agentId" gorm:"primaryKey;type:varchar(32)"`
	PlanCardID    string     `json:"planCardId" gorm:"type:varchar(32);index"`
	ClientID      string     `json:"clientId" gorm:"type:varchar(64);index"`
	LocationID    string     `json:"locationId" gorm:"type:varchar(64)"`
	Name          string     `json:"name" gorm:"type:varchar(255)"`
	IDType        string     `json:"idType" gorm:"column:id_type;type:varchar(50)"`
	IDLast4       string     `json:"idLast4" gorm:"column:id_last4;type:varchar(4)"`
	Phone         string     `json:"phone" gorm:"type:varchar(50)"`
	Status        string     `json:"status" gorm:"type:varchar(20);index"`
	Notes         string     `json:"notes" gorm:"type:text"`
	AddedAt       time.Time  `json:"addedAt" gorm:"index"`
	AddedBy       *string    `json:"addedBy" gorm:"type:varchar(64)"`
	DeactivatedAt *time.Time `json:"deactivatedAt"`
	DeactivatedBy *string    `json:"deactivatedBy" gorm:"type:varchar(64)"`
}

// TableName 指定 GORM 表名。
func (PickupAgent) TableName() string { return "pickup_agents" }

// IsActive 判断代领人是否有效。
func (a *PickupAgent) IsActive() bool {
	return a.Status == AgentActive
}
