package domain

import "time"

// TaskStatus 表示管理任务的状态。
type TaskStatus string

const (
	TaskOpen     TaskStatus = "open"
	TaskSnoozed  TaskStatus = "snoozed"
	TaskResolved TaskStatus = "resolved"
)

// TaskTypePendingSetup 表示等待客户完成邮箱设置的任务。
const TaskTypePendingSetup = "pending_setup"

// SetupCompleteNote 是首个收件人添加后自动关闭设置任务时写入的备注。
const SetupCompleteNote = "Recipients added, setup complete"

// Task 表示工作人员的待办任务，LocationID 为空时为全局任务。
type Task struct {
	TaskID         string     `json:"taskId" gorm:"primaryKey;type:varchar(32)"`
	Type           string     `json:"type" gorm:"type:varchar(50);index"`
	Status         TaskStatus `json:"status" gorm:"type:varchar(20);index"`
	ClientID       string     `json:"clientId" gorm:"type:varchar(64);index"`
	PlanCardID     string     `json:"planCardId" gorm:"type:varchar(32)"`
	LocationID     string     `json:"locationId" gorm:"type:varchar(64);index"`
	Title          string     `json:"title" gorm:"type:varchar(255)"`
	Description    string     `json:"description" gorm:"type:text"`
	DueDate        string     `json:"dueDate" gorm:"type:varchar(10);index"`
	CreatedAt      time.Time  `json:"createdAt"`
	CreatedBy      string     `json:"createdBy" gorm:"type:varchar(64)"`
	ResolvedAt     *time.Time `json:"resolvedAt"`
	ResolvedBy     string     `json:"resolvedBy" gorm:"type:varchar(64)"`
	ResolutionNote string     `json:"resolutionNote" gorm:"type:text"`
	SnoozedUntil   string     `json:"snoozedUntil" gorm:"type:varchar(10)"`
}

// TableName 指定 GORM 表名。
func (Task) TableName() string { return "tasks" }

// IsPending 判断任务是否仍需处理（open 或 snoozed）。
func (t *Task) IsPending() bool {
	return t.Status == TaskOpen || t.Status == TaskSnoozed
}
