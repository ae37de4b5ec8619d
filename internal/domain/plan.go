package domain

import (
	"strings"
	"time"
)

// DefaultStorageDays 是无法确定套餐卡时使用的保管天数。
const DefaultStorageDays = 30

// PlanCardStatusActive 表示套餐卡正常使用中。
const PlanCardStatusActive = "active"

// BillingCycle 表示套餐的计费周期。
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// AutoFeatureScan 表示套餐自动提供扫描服务。
const AutoFeatureScan = "scan"

// PlanTemplate 是只读的套餐目录条目。
type PlanTemplate struct {
	ProductID         string       `json:"productId" gorm:"primaryKey;type:varchar(64)"`
	PlanName          string       `json:"planName" gorm:"type:varchar(255)"`
	BillingCycle      BillingCycle `json:"billingCycle" gorm:"type:varchar(20)"`
	MailLimit         int          `json:"mailLimit"`
	ParcelsIncluded   int          `json:"parcelsIncluded"`
	MaxRecipients     int          `json:"maxRecipients"`
	MailStorageDays   int          `json:"mailStorageDays"`
	ParcelStorageDays int          `json:"parcelStorageDays"`
	MailOverageFee    float64      `json:"mailOverageFee"`
	ParcelOverageFee  float64      `json:"parcelOverageFee"`
	AutoForwardDay    int          `json:"autoForwardDay"`
	AutoFeature       string       `json:"autoFeature" gorm:"type:varchar(50)"`
	PlanMemo          string       `json:"planMemo" gorm:"type:text"`
	Locations         string       `json:"locations" gorm:"type:varchar(500)"` // 逗号分隔的门店 ID
}

// TableName 指定 GORM 表名。
func (PlanTemplate) TableName() string { return "plans" }

// LocationIDs 返回套餐可用的门店列表。
func (p *PlanTemplate) LocationIDs() []string {
	parts := strings.Split(p.Locations, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}

// Location 表示一个收件门店。
type Location struct {
	LocationID string `json:"locationId" gorm:"primaryKey;type:varchar(64)"`
	Name       string `json:"name" gorm:"type:varchar(255)"`
	Address    string `json:"address" gorm:"type:varchar(500)"`
	Active     bool   `json:"active" gorm:"default:true"`
}

// TableName 指定 GORM 表名。
func (Location) TableName() string { return "locations" }

// PlanCard 是一份订阅对应的邮箱实例，保存额度与用量计数。
//
// RecipientsAdded 始终由有效、非临时收件人数重新计算得出，不做盲目递增。
type PlanCard struct {
	PlanCardID             string       `json:"planCardId" gorm:"primaryKey;type:varchar(32)"`
	ClientID               string       `json:"clientId" gorm:"type:varchar(64);index"`
	SubscriptionID         string       `json:"subscriptionId" gorm:"type:varchar(64);uniqueIndex"`
	LocationID             string       `json:"locationId" gorm:"type:varchar(64);index"`
	ProductID              string       `json:"productId" gorm:"type:varchar(64)"`
	PlanName               string       `json:"planName" gorm:"type:varchar(255)"`
	BillingCycle           BillingCycle `json:"billingCycle" gorm:"type:varchar(20)"`
	Status                 string       `json:"status" gorm:"type:varchar(20);index"`
	MailLimit              int          `json:"mailLimit"`
	ParcelLimit            int          `json:"parcelLimit"`
	MaxRecipients          int          `json:"maxRecipients"`
	RecipientsAdded        int          `json:"recipientsAdded"`
	MailsUsed              int          `json:"mailsUsed"`
	ParcelsUsed            int          `json:"parcelsUsed"`
	MailStorageDays        int          `json:"mailStorageDays"`
	ParcelStorageDays      int          `json:"parcelStorageDays"`
	MailOverageFee         float64      `json:"mailOverageFee"`
	ParcelOverageFee       float64      `json:"parcelOverageFee"`
	CurrentPeriodStart     string       `json:"currentPeriodStart" gorm:"type:varchar(10)"`
	CurrentPeriodEnd       string       `json:"currentPeriodEnd" gorm:"type:varchar(10)"`
	AutoForwardDay         int          `json:"autoForwardDay"`
	AutoFeature            string       `json:"autoFeature" gorm:"type:varchar(50)"`
	PlanMemo               string       `json:"planMemo" gorm:"type:text"`
	ForwardingAddress      string       `json:"forwardingAddress" gorm:"type:varchar(500)"`
	ForwardingCity         string       `json:"forwardingCity" gorm:"type:varchar(100)"`
	ForwardingProvince     string       `json:"forwardingProvince" gorm:"type:varchar(100)"`
	ForwardingPostalCode   string       `json:"forwardingPostalCode" gorm:"type:varchar(20)"`
	ForwardingCountry      string       `json:"forwardingCountry" gorm:"type:varchar(100)"`
	ForwardingInstructions string       `json:"forwardingInstructions" gorm:"type:text"`
	ClientTimezone         string       `json:"clientTimezone" gorm:"type:varchar(64)"`
	CustomerType           string       `json:"customerType" gorm:"type:varchar(30)"`
	BusinessDescription    string       `json:"businessDescription" gorm:"type:text"`
	ReferralSource         string       `json:"referralSource" gorm:"type:varchar(255)"`
	FriendlyName           string       `json:"friendlyName" gorm:"type:varchar(255)"`
	ActivatedAt            *time.Time   `json:"activatedAt"`
	ActivatedBy            *string      `json:"activatedBy" gorm:"type:varchar(64)"`
	CreatedAt              time.Time    `json:"createdAt"`
}

// TableName 指定 GORM 表名。
func (PlanCard) TableName() string { return "plan_cards" }

// StorageDays 返回该套餐卡对应类型邮件的保管天数，未配置时使用默认值。
func (p *PlanCard) StorageDays(parcel bool) int {
	days := p.MailStorageDays
	if parcel {
		days = p.ParcelStorageDays
	}
	if days <= 0 {
		return DefaultStorageDays
	}
	return days
}

// HasAutoScan 判断套餐是否附带自动扫描。
func (p *PlanCard) HasAutoScan() bool {
	return p.AutoFeature == AutoFeatureScan
}

// BillingPeriodEnd 计算计费周期的最后一天。
//
// 续费日为起始日加一个月（yearly 为一年），日期超出目标月天数时取月末，
// 周期结束日为续费日的前一天。
func BillingPeriodEnd(start time.Time, cycle BillingCycle) time.Time {
	start = Today(start)
	year, month, day := start.Date()
	if cycle == BillingYearly {
		year++
	} else {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	if last := daysIn(year, month); day > last {
		day = last
	}
	renewal := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return renewal.AddDate(0, 0, -1)
}
