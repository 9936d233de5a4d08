// Package timex 提供统一 JSON 格式的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Layout JSON 输出格式
const Layout = "2006-01-02 15:04:05"

// Time serializes as "2006-01-02 15:04:05" in local time, null when zero
// Time 以 "2006-01-02 15:04:05" 本地时间序列化，零值为 null
type Time time.Time

func Now() Time {
	return Time(time.Now())
}

// Ptr converts an optional time.Time
// Ptr 转换可选时间
func Ptr(t *time.Time) *Time {
	if t == nil {
		return nil
	}
	v := Time(*t)
	return &v
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) String() string {
	return time.Time(t).Local().Format(Layout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time(time.Time{})
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+Layout+`"`, s, time.Local)
	if err != nil {
		parsed, err = time.Parse(`"`+time.RFC3339+`"`, s)
		if err != nil {
			return err
		}
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(v interface{}) error {
	switch val := v.(type) {
	case nil:
		*t = Time(time.Time{})
	case time.Time:
		*t = Time(val)
	case string:
		return t.parseText(val)
	case []byte:
		return t.parseText(string(val))
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", v)
	}
	return nil
}

var scanLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	Layout,
}

func (t *Time) parseText(s string) error {
	for _, layout := range scanLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}

// GormDBDataType picks the column type per dialect
// GormDBDataType 按数据库方言选择列类型
func (Time) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "timestamptz"
	case "mysql":
		return "datetime(3)"
	}
	return "datetime"
}
