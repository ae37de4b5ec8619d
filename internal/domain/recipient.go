package domain

import (
	"strings"
	"time"
)

// 收件人状态
const (
	RecipientActive   = "active"
	RecipientInactive = "inactive"
)

// TemporaryMarker 是临时收件人备注的前缀，带此前缀的收件人不计入容量。
const TemporaryMarker = "TEMP:"

// Recipient 表示套餐卡下登记的收件人，只做状态切换，不物理删除。
type Recipient struct {
	RecipientID    string     `json:"recipientId" gorm:"primaryKey;type:varchar(32)"`
	PlanCardID     string     `json:"planCardId" gorm:"type:varchar(32);index"`
	ClientID       string     `json:"clientId" gorm:"type:varchar(64);index"`
	SubscriptionID string     `json:"subscriptionId" gorm:"type:varchar(64);index"`
	LocationID     string     `json:"locationId" gorm:"type:varchar(64);index"`
	Name           string     `json:"name" gorm:"type:varchar(255)"`
	Type           string     `json:"type" gorm:"type:varchar(30)"`
	Status         string     `json:"status" gorm:"type:varchar(20);index"`
	Language       string     `json:"language" gorm:"type:varchar(10)"`
	Notes          string     `json:"notes" gorm:"type:text"`
	HasMailLogged  bool       `json:"hasMailLogged"`
	ActivatedAt    *time.Time `json:"activatedAt"`
	ActivatedBy    *string    `json:"activatedBy" gorm:"type:varchar(64)"`
	CreatedAt      time.Time  `json:"createdAt"`
	CreatedBy      *string    `json:"createdBy" gorm:"type:varchar(64)"`
}

// TableName 指定 GORM 表名。
func (Recipient) TableName() string { return "recipients" }

// IsTemporary 判断收件人是否为临时收件人。
func (r *Recipient) IsTemporary() bool {
	return strings.HasPrefix(r.Notes, TemporaryMarker)
}

// CountsTowardCapacity 判断收件人是否占用套餐卡容量。
func (r *Recipient) CountsTowardCapacity() bool {
	return r.Status == RecipientActive && !r.IsTemporary()
}

// TemporaryNotes 为备注加上临时标记。
func TemporaryNotes(notes string) string {
	return TemporaryMarker + " " + notes
}
