package domain

// AccessStatus 表示订阅的计费/授权状态，由外部计费流程维护。
type AccessStatus string

const (
	AccessActive             AccessStatus = "ACTIVE"
	AccessPaymentRequired    AccessStatus = "PAYMENT_REQUIRED"
	AccessCanceledWithAccess AccessStatus = "CANCELED_WITH_ACCESS"
	AccessCanceled           AccessStatus = "CANCELED"
)

// NormalizeAccessStatus 将空值视为 ACTIVE。
func NormalizeAccessStatus(status AccessStatus) AccessStatus {
	if status == "" {
		return AccessActive
	}
	return status
}

// CanAccess 判断该状态下客户是否可以使用邮箱。
func (s AccessStatus) CanAccess() bool {
	switch NormalizeAccessStatus(s) {
	case AccessActive, AccessCanceledWithAccess:
		return true
	default:
		return false
	}
}

// SetupStep 表示邮箱开通流程中尚未完成的步骤。
type SetupStep string

const (
	SetupStepPlan       SetupStep = "plan_setup"
	SetupStepRecipients SetupStep = "add_recipients"
)

// BannerType 表示界面提示横幅的类别。
type BannerType string

const (
	BannerPaymentRequired    BannerType = "payment_required"
	BannerCanceledWithAccess BannerType = "canceled_with_access"
	BannerCanceled           BannerType = "canceled"
	BannerSetupRequired      BannerType = "setup_required"
)

// Banner 是根据订阅状态派生出的唯一一条界面提示。
type Banner struct {
	Type        BannerType `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	ActionLabel string     `json:"actionLabel"`
	ActionURL   string     `json:"actionUrl,omitempty"`
	SetupStep   SetupStep  `json:"setupStep,omitempty"`
}
