// Package service 实现邮箱开通、容量核算、邮件生命周期与任务同步等业务规则。
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"mailroom/backend/internal/config"
	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
	"mailroom/backend/internal/idgen"
	"mailroom/backend/internal/lock"
	"mailroom/backend/internal/storage"
)

// DefaultPortalURL 是横幅按钮的默认跳转地址。
const DefaultPortalURL = "https://dashboard.assembly.com"

// Recorder 记录业务指标，由监控模块实现。
type Recorder interface {
	MailLogged(mailType string)
	CapacityRejected(resource string)
	EventPublished(eventType string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) MailLogged(string) {}
func (nopRecorder) CapacityRejected(string) {}
func (nopRecorder) EventPublished(string, bool) {}

// Deps 汇总业务服务共享的依赖，未设置的字段使用默认实现。
type Deps struct {
	Store      storage.Store
	Locker     lock.Locker
	Events     events.Publisher
	IDs        idgen.Generator
	Metrics    Recorder
	Billing    config.BillingConfig
	Onboarding config.OnboardingConfig
	Logger     *zap.Logger
	Now        func() time.Time
}

// core 是各业务服务内嵌的公共依赖。
type core struct {
	store      storage.Store
	locker     lock.Locker
	events     events.Publisher
	ids        idgen.Generator
	metrics    Recorder
	billing    config.BillingConfig
	onboarding config.OnboardingConfig
	log        *zap.Logger
	now        func() time.Time
}

func newCore(deps Deps) *core {
	c := &core{
		store:      deps.Store,
		locker:     deps.Locker,
		events:     deps.Events,
		ids:        deps.IDs,
		metrics:    deps.Metrics,
		billing:    deps.Billing,
		onboarding: deps.Onboarding,
		log:        deps.Logger,
		now:        deps.Now,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.locker == nil {
		c.locker = lock.NewLocal()
	}
	if c.events == nil {
		c.events = events.Nop{Log: c.log}
	}
	if c.ids == nil {
		c.ids = idgen.Random{}
	}
	if c.metrics == nil {
		c.metrics = nopRecorder{}
	}
	if c.now == nil {
		c.now = func() time.Time { return time.Now().UTC() }
	}
	if c.billing.PortalURL == "" {
		c.billing.PortalURL = DefaultPortalURL
	}
	if c.onboarding.DefaultLocation == "" {
		c.onboarding.DefaultLocation = "LOC001"
	}
	if c.onboarding.DefaultTimezone == "" {
		c.onboarding.DefaultTimezone = "America/Toronto"
	}
	if c.onboarding.DefaultCustomerType == "" {
		c.onboarding.DefaultCustomerType = "canadian"
	}
	return c
}

// publish 发布事件，失败只记录日志，不影响已完成的写操作。
func (c *core) publish(ctx context.Context, event events.Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = c.now()
	}
	err := c.events.Publish(ctx, event)
	c.metrics.EventPublished(event.Type, err == nil)
	if err != nil {
		c.log.Warn("failed to publish event",
			zap.String("type", event.Type),
			zap.String("client_id", event.ClientID),
			zap.Error(err),
		)
	}
}

// staffLocation 返回工作人员的默认门店。
func (c *core) staffLocation(ctx context.Context, staffID string) (string, error) {
	if staffID == "" {
		return "", validation("No UUID provided")
	}
	staff, err := c.store.GetActiveStaff(ctx, staffID)
	if err != nil {
		return "", notFoundOr(err, "Staff not found")
	}
	return staff.DefaultLocationID, nil
}

// accessStatusMemo 在单次请求内缓存订阅状态查询结果。
type accessStatusMemo struct {
	store storage.ClientRepository
	seen  map[string]domain.AccessStatus
}

func newAccessStatusMemo(store storage.ClientRepository) *accessStatusMemo {
	return &accessStatusMemo{store: store, seen: make(map[string]domain.AccessStatus)}
}

// lookup 返回订阅的授权状态，订阅不存在时返回空值。
func (m *accessStatusMemo) lookup(ctx context.Context, subscriptionID string) (domain.AccessStatus, error) {
	if subscriptionID == "" {
		return "", nil
	}
	if status, ok := m.seen[subscriptionID]; ok {
		return status, nil
	}
	sub, err := m.store.GetSubscription(ctx, subscriptionID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		m.seen[subscriptionID] = ""
		return "", nil
	case err != nil:
		return "", storageErr(err)
	}
	m.seen[subscriptionID] = sub.AccessStatus
	return sub.AccessStatus, nil
}

// Services 聚合全部业务服务，供传输层使用。
type Services struct {
	Access     *AccessService
	Recipients *RecipientService
	Agents     *AgentService
	Mail       *MailService
	Tasks      *TaskService
	Onboarding *OnboardingService
	PlanCards  *PlanCardService
	Notify     *NotificationService
}

// New 使用同一组依赖创建全部业务服务。
func New(deps Deps) *Services {
	c := newCore(deps)
	tasks := &TaskService{core: c}
	return &Services{
		Access:     &AccessService{core: c},
		Recipients: &RecipientService{core: c, tasks: tasks},
		Agents:     &AgentService{core: c},
		Mail:       &MailService{core: c},
		Tasks:      tasks,
		Onboarding: &OnboardingService{core: c},
		PlanCards:  &PlanCardService{core: c},
		Notify:     &NotificationService{core: c},
	}
}
