package dto

import (
	"encoding/json"
	"strings"
	"time"
)

// Date acepta "2006-01-02" o RFC3339 en JSON y se serializa como fecha.
type Date struct {
	time.Time
}

// NewDate construye un Date a partir de un time.Time.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// DatePtr convierte un *time.Time en *Date (nil se conserva).
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.Format(time.DateOnly))
}

// TimePtr devuelve el valor como *time.Time (nil si d es nil o cero).
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
