package domain

import "time"

// DateLayout 是存储日期（不含时间）使用的格式。
const DateLayout = "2006-01-02"

// FormatDate 将时间格式化为 UTC 日期字符串。
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate 解析 YYYY-MM-DD 日期字符串，结果为 UTC 零点。
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, time.UTC)
}

// Today 返回给定时刻所在的 UTC 日期（零点）。
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays 在日期上增加天数并返回日期字符串。
func AddDays(day time.Time, days int) string {
	return FormatDate(day.AddDate(0, 0, days))
}

// daysIn 返回指定月份的天数。
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
