// Package events 发布邮箱生命周期事件，通知的实际投递由下游服务负责。
package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// 事件路由键
const (
	SetupCompleted        = "setup.completed"
	PlanCardCreated       = "plan_card.created"
	MailLogged            = "mail.logged"
	MailReleased          = "mail.released"
	MailForwarded         = "mail.forwarded"
	ClientPaymentReminder = "client.payment_reminder"
)

// Event 是发布到消息总线的事件。
type Event struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurredAt"`
	ClientID   string                 `json:"clientId,omitempty"`
	PlanCardID string                 `json:"planCardId,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// Publisher 发布事件。
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Nop 在未配置消息总线时使用，只记录日志。
type Nop struct {
	Log *zap.Logger
}

// Publish 丢弃事件。
func (p Nop) Publish(_ context.Context, event Event) error {
	if p.Log != nil {
		p.Log.Debug("event publish skipped", zap.String("type", event.Type))
	}
	return nil
}

// Close 无需释放资源。
func (Nop) Close() {}
