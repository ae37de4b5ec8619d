package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mailroom/backend/internal/domain"
	"mailroom/backend/internal/events"
	"mailroom/backend/internal/idgen"
	"mailroom/backend/internal/storage"
)

const (
	// staffListLimit 是工作人员邮件列表与异常列表的最大返回条数。
	staffListLimit = 200
	// forwardConcurrency 是批量转寄时同时处理的条目数。
	forwardConcurrency = 4
)

// MailService 管理邮件条目的登记、分配、领取、转寄与软删除。
type MailService struct {
	*core
}

// LogMailInput 定义登记邮件所需的输入。
type LogMailInput struct {
	Actor             string `json:"uuid"`
	LocationID        string `json:"locationId" validate:"required"`
	RecipientID       string `json:"recipientId"`
	RecipientName     string `json:"recipientName"`
	PlanCardID        string `json:"planCardId"`
	ClientID          string `json:"clientId"`
	SubscriptionID    string `json:"subscriptionId"`
	SpecialCase       bool   `json:"specialCase"`
	SpecialCaseReason string `json:"specialCaseReason"`
	Type              string `json:"type" validate:"max=30"`
	Confidential      bool   `json:"confidential"`
	SenderName        string `json:"senderName" validate:"max=255"`
	PhysicalLocation  string `json:"physicalLocation"`
	ScanImageURL      string `json:"scanImageUrl"`
	NoteToClient      string `json:"noteToClient"`
	NoteInternal      string `json:"noteInternal"`
	OversizedPickup   bool   `json:"oversizedPickup"`
	PieceCount        int    `json:"pieceCount"`
	EstimatedWeight   string `json:"estimatedWeight"`
	ReturnAddress     string `json:"returnAddress"`
}

// Log 登记一件新邮件，状态为 received。
//
// 非特殊件且关联了套餐卡时，按类型累加信件或包裹用量，并标记收件人已有邮件。
func (s *MailService) Log(ctx context.Context, input LogMailInput) (string, error) {
	if err := validateInput(input); err != nil {
		return "", err
	}

	mailType := valueOr(input.Type, domain.MailTypeLetter)
	parcel := mailType == domain.MailTypeParcel

	storageDays, _, err := s.planStorage(ctx, input.PlanCardID, parcel)
	if err != nil {
		return "", err
	}

	var snapshot string
	if input.SubscriptionID != "" {
		sub, err := s.store.GetSubscription(ctx, input.SubscriptionID)
		switch {
		case err == nil:
			snapshot = string(sub.AccessStatus)
		case !errors.Is(err, storage.ErrNotFound):
			return "", storageErr(err)
		}
	}

	pieces := input.PieceCount
	if pieces <= 0 {
		pieces = 1
	}

	now := s.now()
	today := domain.Today(now)
	item := &domain.MailItem{
		MailID:             s.ids.New(idgen.PrefixMail),
		LoggedAt:           now,
		LoggedBy:           input.Actor,
		LocationID:         input.LocationID,
		RecipientID:        input.RecipientID,
		RecipientName:      input.RecipientName,
		PlanCardID:         input.PlanCardID,
		ClientID:           input.ClientID,
		SubscriptionID:     input.SubscriptionID,
		SubscriptionStatus: snapshot,
		SpecialCase:        input.SpecialCase,
		SpecialCaseReason:  input.SpecialCaseReason,
		Type:               mailType,
		Confidential:       input.Confidential,
		SenderName:         input.SenderName,
		PhysicalLocation:   input.PhysicalLocation,
		ScanImageURL:       input.ScanImageURL,
		NoteToClient:       input.NoteToClient,
		NoteInternal:       input.NoteInternal,
		OversizedPickup:    input.OversizedPickup,
		PieceCount:         pieces,
		EstimatedWeight:    input.EstimatedWeight,
		ReturnAddress:      input.ReturnAddress,
		Status:             domain.MailReceived,
		StorageStartDate:   domain.FormatDate(today),
		StorageDueDate:     domain.AddDays(today, storageDays),
	}
	if err := s.store.CreateMailItem(ctx, item); err != nil {
		return "", storageErr(err)
	}

	if !item.QuotaExempt() {
		if err := s.recordUsage(ctx, item); err != nil {
			return "", err
		}
	}

	s.metrics.MailLogged(item.Type)
	s.log.Info("mail logged",
		zap.String("mail_id", item.MailID),
		zap.String("location_id", item.LocationID),
		zap.String("plan_card_id", item.PlanCardID),
		zap.String("type", item.Type),
		zap.Bool("special_case", item.SpecialCase),
	)

	s.publish(ctx, events.Event{
		Type:       events.MailLogged,
		ClientID:   item.ClientID,
		PlanCardID: item.PlanCardID,
		Data: map[string]interface{}{
			"mailId":         item.MailID,
			"type":           item.Type,
			"specialCase":    item.SpecialCase,
			"storageDueDate": item.StorageDueDate,
		},
	})

	return item.MailID, nil
}

// recordUsage 累加套餐卡用量并标记收件人，套餐卡或收件人已不存在时跳过。
func (s *MailService) recordUsage(ctx context.Context, item *domain.MailItem) error {
	used, err := s.store.BumpUsage(ctx, item.PlanCardID, item.IsParcel())
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		return storageErr(err)
	}
	s.log.Debug("plan card usage updated",
		zap.String("plan_card_id", item.PlanCardID),
		zap.Bool("parcel", item.IsParcel()),
		zap.Int("used", used),
	)

	if item.RecipientID == "" {
		return nil
	}
	if err := s.store.MarkRecipientMailLogged(ctx, item.RecipientID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storageErr(err)
	}
	return nil
}

// planStorage 返回套餐卡对应类型的保管天数以及是否自动扫描，找不到套餐卡时使用默认值。
func (s *MailService) planStorage(ctx context.Context, planCardID string, parcel bool) (int, bool, error) {
	if planCardID == "" {
		return domain.DefaultStorageDays, false, nil
	}
	card, err := s.store.GetPlanCard(ctx, planCardID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.DefaultStorageDays, false, nil
	case err != nil:
		return 0, false, storageErr(err)
	}
	return card.StorageDays(parcel), card.HasAutoScan(), nil
}

// AssignInput 定义将邮件分配给收件人所需的输入。
type AssignInput struct {
	MailID         string `json:"mailId" validate:"required"`
	RecipientID    string `json:"recipientId"`
	RecipientName  string `json:"recipientName"`
	PlanCardID     string `json:"planCardId"`
	ClientID       string `json:"clientId"`
	SubscriptionID string `json:"subscriptionId"`
}

// Assign 将邮件关联到收件人并清除特殊件标记，按信件保管天数重新计算保管期。
// 返回套餐是否附带自动扫描，调用方据此提示扫描。
func (s *MailService) Assign(ctx context.Context, input AssignInput) (bool, error) {
	if err := validateInput(input); err != nil {
		return false, err
	}

	storageDays, needsScan, err := s.planStorage(ctx, input.PlanCardID, false)
	if err != nil {
		return false, err
	}

	today := domain.Today(s.now())
	start := domain.FormatDate(today)
	due := domain.AddDays(today, storageDays)
	cleared := false
	noReason := ""

	patch := domain.MailItemPatch{
		RecipientID:       &input.RecipientID,
		RecipientName:     &input.RecipientName,
		PlanCardID:        &input.PlanCardID,
		ClientID:          &input.ClientID,
		SubscriptionID:    &input.SubscriptionID,
		SpecialCase:       &cleared,
		SpecialCaseReason: &noReason,
		StorageStartDate:  &start,
		StorageDueDate:    &due,
	}
	if err := s.store.UpdateMailItem(ctx, input.MailID, patch); err != nil {
		return false, notFoundOr(err, "Mail item not found")
	}

	s.log.Info("mail assigned",
		zap.String("mail_id", input.MailID),
		zap.String("recipient_id", input.RecipientID),
		zap.String("plan_card_id", input.PlanCardID),
	)
	return needsScan, nil
}

// ReleaseInput 定义邮件领取所需的输入。
type ReleaseInput struct {
	MailID  string `json:"mailId" validate:"required"`
	AgentID string `json:"agentId"`
	Notes   string `json:"releaseNotes"`
	Actor   string `json:"uuid"`
}

// Release 将邮件标记为已领取，能查到代领人时记录其姓名。
func (s *MailService) Release(ctx context.Context, input ReleaseInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	item, err := s.transitionable(ctx, input.MailID, domain.MailReleased)
	if err != nil {
		return err
	}

	releasedTo := input.AgentID
	if input.AgentID != "" {
		agent, err := s.store.GetAgent(ctx, input.AgentID)
		switch {
		case err == nil:
			releasedTo = agent.Name
		case !errors.Is(err, storage.ErrNotFound):
			return storageErr(err)
		}
	}

	now := s.now()
	status := domain.MailReleased
	patch := domain.MailItemPatch{
		Status:       &status,
		ReleasedAt:   &now,
		ReleasedBy:   &input.Actor,
		ReleasedTo:   &releasedTo,
		ReleaseNotes: &input.Notes,
	}
	if _, err := s.updateReceived(ctx, input.MailID, patch); err != nil {
		return err
	}

	s.log.Info("mail released", zap.String("mail_id", input.MailID), zap.String("released_to", releasedTo))
	s.publish(ctx, events.Event{
		Type:       events.MailReleased,
		ClientID:   item.ClientID,
		PlanCardID: item.PlanCardID,
		Data:       map[string]interface{}{"mailId": item.MailID, "releasedTo": releasedTo},
	})
	return nil
}

// transitionable 读取邮件并确认允许迁移到目标状态。
func (s *MailService) transitionable(ctx context.Context, mailID string, to domain.MailStatus) (*domain.MailItem, error) {
	item, err := s.store.GetMailItem(ctx, mailID)
	if err != nil {
		return nil, notFoundOr(err, "Mail item not found")
	}
	if !item.Status.CanTransition(to) {
		return nil, alreadyIn(item.Status)
	}
	return item, nil
}

// updateReceived 仅在邮件仍为 received 时写入补丁。
//
// 并发请求抢先改变状态时返回当前状态和与 transitionable 相同的校验错误。
func (s *MailService) updateReceived(ctx context.Context, mailID string, patch domain.MailItemPatch) (domain.MailStatus, error) {
	expect := domain.MailReceived
	patch.ExpectStatus = &expect

	err := s.store.UpdateMailItem(ctx, mailID, patch)
	if !errors.Is(err, storage.ErrStatusConflict) {
		return "", notFoundOr(err, "Mail item not found")
	}

	item, err := s.store.GetMailItem(ctx, mailID)
	if err != nil {
		return "", notFoundOr(err, "Mail item not found")
	}
	s.log.Debug("mail status changed concurrently",
		zap.String("mail_id", mailID),
		zap.String("status", string(item.Status)),
	)
	return item.Status, alreadyIn(item.Status)
}

func alreadyIn(status domain.MailStatus) error {
	return validation(fmt.Sprintf("Mail item is already %s", status))
}

// BulkForwardInput 定义批量转寄所需的输入。
type BulkForwardInput struct {
	MailIDs        []string `json:"mailIds"`
	TrackingLink   string   `json:"trackingLink"`
	ForwardingCost *float64 `json:"forwardingCost"`
	Notes          string   `json:"forwardNotes"`
	Actor          string   `json:"uuid"`
}

// ForwardResult 是批量转寄中单个条目的结果。
type ForwardResult struct {
	MailID  string `json:"mailId"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// BulkForward 逐条转寄邮件，单条失败不影响其余条目，结果顺序与输入一致。
func (s *MailService) BulkForward(ctx context.Context, input BulkForwardInput) []ForwardResult {
	results := make([]ForwardResult, len(input.MailIDs))

	var g errgroup.Group
	g.SetLimit(forwardConcurrency)
	for i, mailID := range input.MailIDs {
		i, mailID := i, mailID
		g.Go(func() error {
			results[i] = ForwardResult{MailID: mailID, Status: "ok"}
			if err := s.forwardOne(ctx, mailID, input); err != nil {
				results[i].Status = "error"
				results[i].Message = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Status != "ok" {
			failed++
		}
	}
	s.log.Info("bulk forward finished", zap.Int("total", len(results)), zap.Int("failed", failed))
	return results
}

func (s *MailService) forwardOne(ctx context.Context, mailID string, input BulkForwardInput) error {
	if strings.TrimSpace(mailID) == "" {
		return validation("mailId is required")
	}

	item, err := s.transitionable(ctx, mailID, domain.MailForwarded)
	if err != nil {
		return err
	}

	now := s.now()
	status := domain.MailForwarded
	patch := domain.MailItemPatch{
		Status:         &status,
		ForwardedAt:    &now,
		TrackingLink:   &input.TrackingLink,
		ForwardingCost: input.ForwardingCost,
	}
	if input.Notes != "" {
		patch.NoteInternal = &input.Notes
	}
	if _, err := s.updateReceived(ctx, mailID, patch); err != nil {
		return err
	}

	s.publish(ctx, events.Event{
		Type:       events.MailForwarded,
		ClientID:   item.ClientID,
		PlanCardID: item.PlanCardID,
		Data:       map[string]interface{}{"mailId": mailID, "trackingLink": input.TrackingLink},
	})
	return nil
}

// Delete 软删除邮件，记录保留以供审计。对已删除条目重复调用视为成功。
func (s *MailService) Delete(ctx context.Context, mailID string) error {
	if mailID == "" {
		return validation("mailId is required")
	}

	item, err := s.store.GetMailItem(ctx, mailID)
	if err != nil {
		return notFoundOr(err, "Mail item not found")
	}
	if item.Status.Terminal() {
		if item.Status == domain.MailDeleted {
			return nil
		}
		return alreadyIn(item.Status)
	}

	status := domain.MailDeleted
	current, err := s.updateReceived(ctx, mailID, domain.MailItemPatch{Status: &status})
	if current == domain.MailDeleted {
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("mail deleted", zap.String("mail_id", mailID))
	return nil
}

// SetStatus 供工作人员纠正状态，不受正常迁移规则限制；note 非空时覆盖内部备注。
func (s *MailService) SetStatus(ctx context.Context, mailID, status, note string) error {
	if mailID == "" {
		return validation("mailId is required")
	}
	parsed, ok := domain.ParseMailStatus(status)
	if !ok {
		return validation(fmt.Sprintf("Invalid status: %s", status))
	}

	patch := domain.MailItemPatch{Status: &parsed}
	if note != "" {
		patch.NoteInternal = &note
	}
	if err := s.store.UpdateMailItem(ctx, mailID, patch); err != nil {
		return notFoundOr(err, "Mail item not found")
	}

	s.log.Info("mail status overridden", zap.String("mail_id", mailID), zap.String("status", status))
	return nil
}

// ClientMailItem 是客户可见的邮件条目，不包含内部备注和存放位置。
type ClientMailItem struct {
	domain.MailItem
	// 同名字段遮蔽内嵌字段，始终为 nil，序列化时省略
	NoteInternal     *struct{} `json:"noteInternal,omitempty"`
	PhysicalLocation *struct{} `json:"physicalLocation,omitempty"`
}

// ListForClient 返回客户某订阅下的邮件，按登记时间倒序。
func (s *MailService) ListForClient(ctx context.Context, clientID, subscriptionID string) ([]ClientMailItem, error) {
	if clientID == "" {
		return nil, validation("No UUID provided")
	}
	items, err := s.store.ListMail(ctx, storage.MailFilter{ClientID: clientID, SubscriptionID: subscriptionID})
	if err != nil {
		return nil, storageErr(err)
	}

	out := make([]ClientMailItem, 0, len(items))
	for _, item := range items {
		out = append(out, ClientMailItem{MailItem: item})
	}
	return out, nil
}

// StaffMailItem 是工作人员列表中的邮件条目，附带订阅授权状态。
type StaffMailItem struct {
	domain.MailItem
	AccessStatus *domain.AccessStatus `json:"accessStatus"`
}

// ListForStaff 返回工作人员所在门店的邮件，按登记时间倒序，最多 200 条。
//
// 授权状态优先使用登记时的快照，缺失时查询订阅。
func (s *MailService) ListForStaff(ctx context.Context, staffID string) ([]StaffMailItem, error) {
	locationID, err := s.staffLocation(ctx, staffID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListMail(ctx, storage.MailFilter{LocationID: locationID, Limit: staffListLimit})
	if err != nil {
		return nil, storageErr(err)
	}

	statuses := newAccessStatusMemo(s.store)
	out := make([]StaffMailItem, 0, len(items))
	for _, item := range items {
		status := domain.AccessStatus(item.SubscriptionStatus)
		if status == "" {
			if status, err = statuses.lookup(ctx, item.SubscriptionID); err != nil {
				return nil, err
			}
		}

		row := StaffMailItem{MailItem: item}
		if status != "" {
			row.AccessStatus = &status
		}
		out = append(out, row)
	}
	return out, nil
}

// ListExceptions 返回门店内尚未处理的特殊件，按登记时间倒序，最多 200 条。
func (s *MailService) ListExceptions(ctx context.Context, staffID string) ([]domain.MailItem, error) {
	locationID, err := s.staffLocation(ctx, staffID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListMail(ctx, storage.MailFilter{
		LocationID:     locationID,
		ExceptionsOnly: true,
		Limit:          staffListLimit,
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return items, nil
}
