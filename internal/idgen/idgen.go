// Package idgen 生成带类型前缀、便于人工识别的业务标识。
package idgen

import (
	"github.com/google/uuid"
)

// 标识前缀
const (
	PrefixPlanCard  = "PC"
	PrefixRecipient = "RCP"
	PrefixMail      = "ML"
	PrefixAgent     = "AGT"
	PrefixTask      = "TSK"
)

// suffixLength 是前缀之后随机部分的长度。
const suffixLength = 12

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator 生成业务标识。
type Generator interface {
	New(prefix string) string
}

// Random 使用 UUIDv4 的随机字节生成 前缀+12 位大写字母数字 的标识。
type Random struct{}

// New 生成一个新的标识。
func (Random) New(prefix string) string {
	return New(prefix)
}

// New 生成一个新的标识，例如 "PC" -> "PC7K2M9Q4ZB1XA"。
func New(prefix string) string {
	id := uuid.New()
	buf := make([]byte, 0, len(prefix)+suffixLength)
	buf = append(buf, prefix...)
	for i := 0; i < len(id) && len(buf) < len(prefix)+suffixLength; i++ {
		// 第 6、8 字节含有版本与变体位，不参与取值。
		if i == 6 || i == 8 {
			continue
		}
		buf = append(buf, alphabet[int(id[i])%len(alphabet)])
	}
	return string(buf)
}
