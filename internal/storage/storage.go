package storage

import (
	"context"
	"errors"

	"mailroom/backend/internal/domain"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists 唯一约束冲突
	ErrAlreadyExists = errors.New("record already exists")
	// ErrStatusConflict 记录存在但状态已不满足更新的前置条件
	ErrStatusConflict = errors.New("record status changed")
)

// StaffRepository 定义工作人员数据存取操作。
type StaffRepository interface {
	// GetActiveStaff 仅返回有效的工作人员，否则返回 ErrNotFound。
	GetActiveStaff(ctx context.Context, staffID string) (*domain.Staff, error)
	SaveStaff(ctx context.Context, staff *domain.Staff) error
}

// ClientRepository 定义客户与订阅的只读操作。
type ClientRepository interface {
	GetClient(ctx context.Context, clientID string) (*domain.Client, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	// ListSubscriptionsByClient 按创建时间倒序返回客户的全部订阅。
	ListSubscriptionsByClient(ctx context.Context, clientID string) ([]domain.Subscription, error)
}

// CatalogRepository 定义套餐目录与门店的只读操作。
type CatalogRepository interface {
	GetPlanTemplate(ctx context.Context, productID string) (*domain.PlanTemplate, error)
	ListActiveLocations(ctx context.Context) ([]domain.Location, error)
}

// PlanCardRepository 定义套餐卡数据存取操作。
type PlanCardRepository interface {
	// CreatePlanCard 每个订阅只允许一张套餐卡，重复时返回 ErrAlreadyExists。
	CreatePlanCard(ctx context.Context, card *domain.PlanCard) error
	GetPlanCard(ctx context.Context, planCardID string) (*domain.PlanCard, error)
	GetPlanCardBySubscription(ctx context.Context, subscriptionID string) (*domain.PlanCard, error)
	ListPlanCardsByClient(ctx context.Context, clientID string) ([]domain.PlanCard, error)
	ListActivePlanCardsByLocation(ctx context.Context, locationID string) ([]domain.PlanCard, error)
	UpdateFriendlyName(ctx context.Context, planCardID, friendlyName string) error
	// ActivatePlanCard 记录首个收件人带来的开通时间与操作者。
	ActivatePlanCard(ctx context.Context, planCardID string, activation PlanCardActivation) error
	// SyncRecipientCount 以有效、非临时收件人数覆盖 recipientsAdded，返回覆盖后的值。
	SyncRecipientCount(ctx context.Context, planCardID string) (int, error)
	// BumpUsage 读取当前用量后写回加一的值，parcel 决定更新包裹还是信件计数。
	BumpUsage(ctx context.Context, planCardID string, parcel bool) (int, error)
}

// RecipientRepository 定义收件人数据存取操作。
type RecipientRepository interface {
	CreateRecipient(ctx context.Context, recipient *domain.Recipient) error
	GetRecipient(ctx context.Context, recipientID string) (*domain.Recipient, error)
	UpdateRecipientStatus(ctx context.Context, recipientID, status string) error
	UpdateRecipientProfile(ctx context.Context, recipientID string, name string, recipientType *string) error
	MarkRecipientMailLogged(ctx context.Context, recipientID string) error
	// CountActiveRecipients 统计套餐卡上有效且非临时的收件人。
	CountActiveRecipients(ctx context.Context, planCardID string) (int, error)
	// ListRecipientsByPlanCard 按创建时间升序返回。
	ListRecipientsByPlanCard(ctx context.Context, planCardID string) ([]domain.Recipient, error)
	ListRecipientsBySubscription(ctx context.Context, clientID, subscriptionID string) ([]domain.Recipient, error)
	ListActiveRecipientsByLocation(ctx context.Context, locationID string) ([]domain.Recipient, error)
}

// AgentRepository 定义代领人数据存取操作。
type AgentRepository interface {
	CreateAgent(ctx context.Context, agent *domain.PickupAgent) error
	GetAgent(ctx context.Context, agentID string) (*domain.PickupAgent, error)
	UpdateAgent(ctx context.Context, agent *domain.PickupAgent) error
	CountActiveAgents(ctx context.Context, clientID string) (int, error)
	// ListAgentsByClient 按添加时间升序返回全部代领人（含已停用）。
	ListAgentsByClient(ctx context.Context, clientID string) ([]domain.PickupAgent, error)
	ListActiveAgentsByPlanCard(ctx context.Context, planCardID string) ([]domain.PickupAgent, error)
}

// MailRepository 定义邮件条目数据存取操作，不提供物理删除。
type MailRepository interface {
	CreateMailItem(ctx context.Context, item *domain.MailItem) error
	GetMailItem(ctx context.Context, mailID string) (*domain.MailItem, error)
	// UpdateMailItem 在 patch.ExpectStatus 不满足时返回 ErrStatusConflict，检查与写入是原子的。
	UpdateMailItem(ctx context.Context, mailID string, patch domain.MailItemPatch) error
	// ListMail 按登记时间倒序返回，始终排除已删除条目。
	ListMail(ctx context.Context, filter MailFilter) ([]domain.MailItem, error)
}

// TaskRepository 定义任务数据存取操作。
type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	// ResolveOpenTasks 关闭客户名下指定类型的 open 任务，返回关闭数量。
	ResolveOpenTasks(ctx context.Context, clientID, taskType string, resolution TaskResolution) (int, error)
	// ListPendingTasks 返回 open/snoozed 的任务，全局任务与指定门店任务，按到期日升序。
	ListPendingTasks(ctx context.Context, locationID string) ([]domain.Task, error)
}

// Store 定义完整的存储接口。
type Store interface {
	StaffRepository
	ClientRepository
	CatalogRepository
	PlanCardRepository
	RecipientRepository
	AgentRepository
	MailRepository
	TaskRepository

	// 工具方法
	Close() error
	Health() error
}
