package httptransport

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// params 是扁平请求参数：GET 来自查询字符串，POST 来自 JSON 请求体。
//
// 前端会把数字、布尔值以字符串形式提交，取值方法统一做宽松转换。
type params map[string]interface{}

func queryParams(values url.Values) params {
	p := make(params, len(values))
	for key := range values {
		p[key] = values.Get(key)
	}
	return p
}

// Has 判断字段是否出现且不为 null。
func (p params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

func (p params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// StringPtr 字段缺失或为空字符串时返回 nil。
func (p params) StringPtr(key string) *string {
	s := p.String(key)
	if s == "" {
		return nil
	}
	return &s
}

func (p params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	default:
		return false
	}
}

func (p params) Int(key string) int {
	switch v := p[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// FloatPtr 字段缺失、为空或无法解析时返回 nil。
func (p params) FloatPtr(key string) *float64 {
	switch v := p[key].(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Strings 接受 JSON 数组，或内容为 JSON 数组的字符串。
func (p params) Strings(key string) ([]string, bool) {
	switch v := p[key].(type) {
	case nil:
		return []string{}, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, true
		}
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}
