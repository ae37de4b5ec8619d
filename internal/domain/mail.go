package domain

import "time"

// MailStatus 表示邮件条目的生命周期状态。
//
// received 是唯一的非终态，released、forwarded、deleted 均不可回退。
type MailStatus string

const (
	MailReceived  MailStatus = "received"
	MailReleased  MailStatus = "released"
	MailForwarded MailStatus = "forwarded"
	MailDeleted   MailStatus = "deleted"
)

// ParseMailStatus 校验状态字符串是否为已知值。
func ParseMailStatus(value string) (MailStatus, bool) {
	switch s := MailStatus(value); s {
	case MailReceived, MailReleased, MailForwarded, MailDeleted:
		return s, true
	default:
		return "", false
	}
}

// Terminal 判断状态是否为终态。
func (s MailStatus) Terminal() bool {
	return s != MailReceived
}

// CanTransition 判断是否允许从当前状态迁移到目标状态。
func (s MailStatus) CanTransition(to MailStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case MailReleased, MailForwarded, MailDeleted:
		return true
	default:
		return false
	}
}

// 邮件类型
const (
	MailTypeLetter = "letter"
	MailTypeParcel = "parcel"
)

// MailItem 表示门店登记的一件邮件，仅做软删除。
type MailItem struct {
	MailID             string     `json:"mailId" gorm:"primaryKey;type:varchar(32)"`
	LoggedAt           time.Time  `json:"loggedAt" gorm:"index"`
	LoggedBy           string     `json:"loggedBy" gorm:"type:varchar(64)"`
	LocationID         string     `json:"locationId" gorm:"type:varchar(64);index"`
	RecipientID        string     `json:"recipientId" gorm:"type:varchar(32);index"`
	RecipientName      string     `json:"recipientName" gorm:"type:varchar(255)"`
	PlanCardID         string     `json:"planCardId" gorm:"type:varchar(32);index"`
	ClientID           string     `json:"clientId" gorm:"type:varchar(64);index"`
	SubscriptionID     string     `json:"subscriptionId" gorm:"type:varchar(64);index"`
	SubscriptionStatus string     `json:"subscriptionStatus" gorm:"type:varchar(30)"`
	SpecialCase        bool       `json:"specialCase" gorm:"index"`
	SpecialCaseReason  string     `json:"specialCaseReason" gorm:"type:varchar(255)"`
	Type               string     `json:"type" gorm:"type:varchar(30)"`
	Confidential       bool       `json:"confidential"`
	SenderName         string     `json:"senderName" gorm:"type:varchar(255)"`
	PhysicalLocation   string     `json:"physicalLocation" gorm:"type:varchar(255)"`
	ScanImageURL       string     `json:"scanImageUrl" gorm:"column:scan_image_url;type:varchar(1000)"`
	NoteToClient       string     `json:"noteToClient" gorm:"type:text"`
	NoteInternal       string     `json:"noteInternal" gorm:"type:text"`
	OversizedPickup    bool       `json:"oversizedPickup"`
	PieceCount         int        `json:"pieceCount" gorm:"default:1"`
	EstimatedWeight    string     `json:"estimatedWeight" gorm:"type:varchar(50)"`
	ReturnAddress      string     `json:"returnAddress" gorm:"type:varchar(500)"`
	Status             MailStatus `json:"status" gorm:"type:varchar(20);index"`
	StorageStartDate   string     `json:"storageStartDate" gorm:"type:varchar(10)"`
	StorageDueDate     string     `json:"storageDueDate" gorm:"type:varchar(10)"`
	ReleasedAt         *time.Time `json:"releasedAt"`
	ReleasedBy         string     `json:"releasedBy" gorm:"type:varchar(64)"`
	ReleasedTo         string     `json:"releasedTo" gorm:"type:varchar(255)"`
	ReleaseNotes       string     `json:"releaseNotes" gorm:"type:text"`
	ForwardedAt        *time.Time `json:"forwardedAt"`
	TrackingLink       string     `json:"trackingLink" gorm:"type:varchar(1000)"`
	ForwardingCost     float64    `json:"forwardingCost"`
}

// TableName 指定 GORM 表名。
func (MailItem) TableName() string { return "mail_log" }

// IsParcel 判断邮件是否按包裹计量。
func (m *MailItem) IsParcel() bool {
	return m.Type == MailTypeParcel
}

// QuotaExempt 判断邮件是否不计入套餐用量：特殊件或尚未关联套餐卡。
func (m *MailItem) QuotaExempt() bool {
	return m.SpecialCase || m.PlanCardID == ""
}

// MailItemPatch 描述邮件条目的部分更新，nil 字段保持不变。
type MailItemPatch struct {
	// ExpectStatus 非空时只在当前状态等于该值时写入，本身不是列。
	ExpectStatus *MailStatus

	Status            *MailStatus
	SenderName        *string
	Type              *string
	Confidential      *bool
	PhysicalLocation  *string
	ScanImageURL      *string
	NoteToClient      *string
	NoteInternal      *string
	OversizedPickup   *bool
	PieceCount        *int
	RecipientID       *string
	RecipientName     *string
	PlanCardID        *string
	ClientID          *string
	SubscriptionID    *string
	SpecialCase       *bool
	SpecialCaseReason *string
	StorageStartDate  *string
	StorageDueDate    *string
	ReleasedAt        *time.Time
	ReleasedBy        *string
	ReleasedTo        *string
	ReleaseNotes      *string
	ForwardedAt       *time.Time
	TrackingLink      *string
	ForwardingCost    *float64
}

// Columns 将补丁转换为列名到值的映射，供 SQL 存储使用。
func (p MailItemPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	set := func(name string, ok bool, value interface{}) {
		if ok {
			cols[name] = value
		}
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	set("sender_name", p.SenderName != nil, deref(p.SenderName))
	set("type", p.Type != nil, deref(p.Type))
	set("physical_location", p.PhysicalLocation != nil, deref(p.PhysicalLocation))
	set("scan_image_url", p.ScanImageURL != nil, deref(p.ScanImageURL))
	set("note_to_client", p.NoteToClient != nil, deref(p.NoteToClient))
	set("note_internal", p.NoteInternal != nil, deref(p.NoteInternal))
	set("recipient_id", p.RecipientID != nil, deref(p.RecipientID))
	set("recipient_name", p.RecipientName != nil, deref(p.RecipientName))
	set("plan_card_id", p.PlanCardID != nil, deref(p.PlanCardID))
	set("client_id", p.ClientID != nil, deref(p.ClientID))
	set("subscription_id", p.SubscriptionID != nil, deref(p.SubscriptionID))
	set("special_case_reason", p.SpecialCaseReason != nil, deref(p.SpecialCaseReason))
	set("storage_start_date", p.StorageStartDate != nil, deref(p.StorageStartDate))
	set("storage_due_date", p.StorageDueDate != nil, deref(p.StorageDueDate))
	set("released_by", p.ReleasedBy != nil, deref(p.ReleasedBy))
	set("released_to", p.ReleasedTo != nil, deref(p.ReleasedTo))
	set("release_notes", p.ReleaseNotes != nil, deref(p.ReleaseNotes))
	set("tracking_link", p.TrackingLink != nil, deref(p.TrackingLink))
	if p.Confidential != nil {
		cols["confidential"] = *p.Confidential
	}
	if p.OversizedPickup != nil {
		cols["oversized_pickup"] = *p.OversizedPickup
	}
	if p.SpecialCase != nil {
		cols["special_case"] = *p.SpecialCase
	}
	if p.PieceCount != nil {
		cols["piece_count"] = *p.PieceCount
	}
	if p.ReleasedAt != nil {
		cols["released_at"] = *p.ReleasedAt
	}
	if p.ForwardedAt != nil {
		cols["forwarded_at"] = *p.ForwardedAt
	}
	if p.ForwardingCost != nil {
		cols["forwarding_cost"] = *p.ForwardingCost
	}
	return cols
}

// Allows 判断补丁的前置状态条件是否满足。
func (p MailItemPatch) Allows(current MailStatus) bool {
	return p.ExpectStatus == nil || *p.ExpectStatus == current
}

// Empty 判断补丁是否不包含任何字段。
func (p MailItemPatch) Empty() bool {
	return len(p.Columns()) == 0
}

// Apply 将补丁写入内存中的邮件条目。
func (p MailItemPatch) Apply(m *MailItem) {
	if p.Status != nil {
		m.Status = *p.Status
	}
	assign(&m.SenderName, p.SenderName)
	assign(&m.Type, p.Type)
	assign(&m.PhysicalLocation, p.PhysicalLocation)
	assign(&m.ScanImageURL, p.ScanImageURL)
	assign(&m.NoteToClient, p.NoteToClient)
	assign(&m.NoteInternal, p.NoteInternal)
	assign(&m.RecipientID, p.RecipientID)
	assign(&m.RecipientName, p.RecipientName)
	assign(&m.PlanCardID, p.PlanCardID)
	assign(&m.ClientID, p.ClientID)
	assign(&m.SubscriptionID, p.SubscriptionID)
	assign(&m.SpecialCaseReason, p.SpecialCaseReason)
	assign(&m.StorageStartDate, p.StorageStartDate)
	assign(&m.StorageDueDate, p.StorageDueDate)
	assign(&m.ReleasedBy, p.ReleasedBy)
	assign(&m.ReleasedTo, p.ReleasedTo)
	assign(&m.ReleaseNotes, p.ReleaseNotes)
	assign(&m.TrackingLink, p.TrackingLink)
	assign(&m.Confidential, p.Confidential)
	assign(&m.OversizedPickup, p.OversizedPickup)
	assign(&m.SpecialCase, p.SpecialCase)
	assign(&m.PieceCount, p.PieceCount)
	assign(&m.ForwardingCost, p.ForwardingCost)
	if p.ReleasedAt != nil {
		t := *p.ReleasedAt
		m.ReleasedAt = &t
	}
	if p.ForwardedAt != nil {
		t := *p.ForwardedAt
		m.ForwardedAt = &t
	}
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
