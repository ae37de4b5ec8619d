package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mailroom/backend/internal/domain"
)

// editableMailFields 是 Edit 允许修改的字段，键为请求中的字段名。
var editableMailFields = map[string]func(p *domain.MailItemPatch, v interface{}) error{
	"senderName":        stringField(func(p *domain.MailItemPatch, s *string) { p.SenderName = s }),
	"type":              stringField(func(p *domain.MailItemPatch, s *string) { p.Type = s }),
	"physicalLocation":  stringField(func(p *domain.MailItemPatch, s *string) { p.PhysicalLocation = s }),
	"scanImageUrl":      stringField(func(p *domain.MailItemPatch, s *string) { p.ScanImageURL = s }),
	"noteToClient":      stringField(func(p *domain.MailItemPatch, s *string) { p.NoteToClient = s }),
	"noteInternal":      stringField(func(p *domain.MailItemPatch, s *string) { p.NoteInternal = s }),
	"recipientId":       stringField(func(p *domain.MailItemPatch, s *string) { p.RecipientID = s }),
	"recipientName":     stringField(func(p *domain.MailItemPatch, s *string) { p.RecipientName = s }),
	"planCardId":        stringField(func(p *domain.MailItemPatch, s *string) { p.PlanCardID = s }),
	"clientId":          stringField(func(p *domain.MailItemPatch, s *string) { p.ClientID = s }),
	"subscriptionId":    stringField(func(p *domain.MailItemPatch, s *string) { p.SubscriptionID = s }),
	"specialCaseReason": stringField(func(p *domain.MailItemPatch, s *string) { p.SpecialCaseReason = s }),
	"confidential":      boolField("confidential", func(p *domain.MailItemPatch, b *bool) { p.Confidential = b }),
	"oversizedPickup":   boolField("oversizedPickup", func(p *domain.MailItemPatch, b *bool) { p.OversizedPickup = b }),
	"specialCase":       boolField("specialCase", func(p *domain.MailItemPatch, b *bool) { p.SpecialCase = b }),
	"pieceCount":        intField("pieceCount", func(p *domain.MailItemPatch, n *int) { p.PieceCount = n }),
}

// Edit 按白名单部分更新邮件描述字段，不改变状态。
//
// 文本形式的 "TRUE"/"true"/"FALSE"/"false" 会转换为布尔值；没有可识别字段时直接返回成功。
func (s *MailService) Edit(ctx context.Context, mailID string, fields map[string]interface{}) error {
	if mailID == "" {
		return validation("mailId is required")
	}

	var patch domain.MailItemPatch
	applied := make([]string, 0, len(fields))
	for name, value := range fields {
		set, ok := editableMailFields[name]
		if !ok {
			continue
		}
		if err := set(&patch, normalizeLiteral(value)); err != nil {
			return err
		}
		applied = append(applied, name)
	}
	if patch.Empty() {
		return nil
	}

	if err := s.store.UpdateMailItem(ctx, mailID, patch); err != nil {
		return notFoundOr(err, "Mail item not found")
	}

	s.log.Info("mail edited", zap.String("mail_id", mailID), zap.Strings("fields", applied))
	return nil
}

// normalizeLiteral 将布尔字面量字符串转换为布尔值。
func normalizeLiteral(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		switch s {
		case "TRUE", "true":
			return true
		case "FALSE", "false":
			return false
		}
	}
	return value
}

func stringField(set func(*domain.MailItemPatch, *string)) func(*domain.MailItemPatch, interface{}) error {
	return func(p *domain.MailItemPatch, v interface{}) error {
		var s string
		switch val := v.(type) {
		case nil:
		case string:
			s = val
		case float64:
			s = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			s = fmt.Sprint(val)
		}
		set(p, &s)
		return nil
	}
}

func boolField(name string, set func(*domain.MailItemPatch, *bool)) func(*domain.MailItemPatch, interface{}) error {
	return func(p *domain.MailItemPatch, v interface{}) error {
		var b bool
		switch val := v.(type) {
		case nil:
		case bool:
			b = val
		default:
			return validation(fmt.Sprintf("%s must be a boolean", name))
		}
		set(p, &b)
		return nil
	}
}

// intField 把 null 视为不修改，件数没有可清空的值。
func intField(name string, set func(*domain.MailItemPatch, *int)) func(*domain.MailItemPatch, interface{}) error {
	return func(p *domain.MailItemPatch, v interface{}) error {
		var n int
		switch val := v.(type) {
		case nil:
			return nil
		case float64:
			if val != math.Trunc(val) {
				return validation(fmt.Sprintf("%s must be a whole number", name))
			}
			n = int(val)
		case int:
			n = val
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return validation(fmt.Sprintf("%s must be a whole number", name))
			}
			n = parsed
		default:
			return validation(fmt.Sprintf("%s must be a whole number", name))
		}
		set(p, &n)
		return nil
	}
}
