package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout формат календарной даты в API и в БД
const DateLayout = "2006-01-02"

// NullDate календарная дата без времени суток, может отсутствовать.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate возвращает заполненную дату (UTC, полночь).
func NewDate(year int, month time.Month, day int) NullDate {
	return NullDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// DateOf отрезает время суток у t в его собственной временной зоне.
func DateOf(t time.Time) NullDate {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate строго разбирает yyyy-MM-dd. Пустая строка даёт пустую дату без ошибки.
func ParseDate(s string) (NullDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullDate{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return NullDate{}, fmt.Errorf("invalid date %q: expected yyyy-MM-dd", s)
	}
	return DateOf(t), nil
}

// LenientDate разбирает дату, битые значения считаются отсутствующими.
// Допускается и полный RFC 3339 timestamp, от него остаётся только дата.
func LenientDate(s string) NullDate {
	s = strings.TrimSpace(s)
	if d, err := ParseDate(s); err == nil {
		return d
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t)
	}
	return NullDate{}
}

func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Before сравнивает только заполненные даты.
func (d NullDate) Before(o NullDate) bool {
	return d.Valid && o.Valid && d.Time.Before(o.Time)
}

func (d NullDate) After(o NullDate) bool {
	return d.Valid && o.Valid && d.Time.After(o.Time)
}

// Scan реализует sql.Scanner.
func (d *NullDate) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = NullDate{}
	case time.Time:
		*d = DateOf(v)
	case string:
		*d = LenientDate(v)
	case []byte:
		*d = LenientDate(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NullDate", value)
	}
	return nil
}

// Value реализует driver.Valuer.
func (d NullDate) Value() (driver.Value, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Time.Format(DateLayout), nil
}

func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON строгий: на входе API битая дата это ошибка валидации.
func (d *NullDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
