package domain

import (
	"regexp"
	"strings"
	"time"
)

// ClientStatusActive 是唯一允许访问的客户状态。
const ClientStatusActive = "active"

// Staff 表示邮件中心的工作人员。
type Staff struct {
	StaffID           string    `json:"staffId" gorm:"primaryKey;type:varchar(64)"`
	Name              string    `json:"name" gorm:"type:varchar(255)"`
	Email             string    `json:"email" gorm:"type:varchar(255);index"`
	Role              string    `json:"role" gorm:"type:varchar(50)"`
	DefaultLocationID string    `json:"defaultLocationId" gorm:"type:varchar(64)"`
	Pin               string    `json:"pin" gorm:"type:varchar(20)"`
	Active            bool      `json:"active" gorm:"default:true"`
	CreatedAt         time.Time `json:"createdAt"`
}

// TableName 指定 GORM 表名。
func (Staff) TableName() string { return "staff" }

// Client 表示注册客户，由外部注册流程创建。
type Client struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	GivenName     string    `json:"givenName" gorm:"type:varchar(255)"`
	FamilyName    string    `json:"familyName" gorm:"type:varchar(255)"`
	Email         string    `json:"email" gorm:"type:varchar(255);index"`
	FallbackColor string    `json:"fallbackColor" gorm:"type:varchar(20)"`
	Status        string    `json:"status" gorm:"type:varchar(20);index"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName 指定 GORM 表名。
func (Client) TableName() string { return "clients" }

// DisplayName 用单个空格拼接名和姓，忽略缺失部分。
func (c *Client) DisplayName() string {
	parts := make([]string, 0, 2)
	for _, part := range []string{c.GivenName, c.FamilyName} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// IsActive 判断客户账号是否处于可用状态。
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// Subscription 表示客户的一份订阅，外部计费流程维护其状态。
type Subscription struct {
	ID                  string       `json:"id" gorm:"primaryKey;type:varchar(64)"`
	ClientID            string       `json:"clientId" gorm:"type:varchar(64);index"`
	AccessStatus        AccessStatus `json:"accessStatus" gorm:"type:varchar(30)"`
	PlanName            string       `json:"planName" gorm:"type:varchar(255)"`
	PlanAmount          int64        `json:"planAmount"`
	PlanAmountFormatted string       `json:"planAmountFormatted" gorm:"type:varchar(50)"`
	Interval            string       `json:"interval" gorm:"type:varchar(20)"`
	ProductID           string       `json:"productId" gorm:"type:varchar(64)"`
	AccessUntilDate     *time.Time   `json:"accessUntilDate,omitempty"`
	CreatedAt           time.Time    `json:"createdAt" gorm:"index"`
}

// TableName 指定 GORM 表名。
func (Subscription) TableName() string { return "subscriptions" }

var clientActorPattern = regexp.MustCompile(`^[0-9a-f]{8}-`)

// ClientActor 仅当操作者标识形如客户 UUID 时返回它，工作人员标识返回 nil。
func ClientActor(actor string) *string {
	if !clientActorPattern.MatchString(actor) {
		return nil
	}
	return &actor
}
