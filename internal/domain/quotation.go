package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// PlaceholderText is shown in the primary slot when the collection is empty.
	PlaceholderText = "暂无经文"

	// ReferencePrefix precedes every rendered reference line.
	ReferencePrefix = "— "
)

// Quotation is one bilingual entry of the collection.
// The primary language is Chinese and the secondary language is English.
type Quotation struct {
	ID                 string
	PrimaryText        string
	PrimaryReference   string
	SecondaryText      string
	SecondaryReference string
}

// Trimmed returns a copy with surrounding whitespace removed from every text field.
func (q Quotation) Trimmed() Quotation {
	return Quotation{
		ID:                 strings.TrimSpace(q.ID),
		PrimaryText:        strings.TrimSpace(q.PrimaryText),
		PrimaryReference:   strings.TrimSpace(q.PrimaryReference),
		SecondaryText:      strings.TrimSpace(q.SecondaryText),
		SecondaryReference: strings.TrimSpace(q.SecondaryReference),
	}
}

// Validate requires all four text fields to be non-empty.
// Callers trim before validating; whitespace-only input counts as empty.
func (q Quotation) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"zh", q.PrimaryText},
		{"refZh", q.PrimaryReference},
		{"en", q.SecondaryText},
		{"refEn", q.SecondaryReference},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, MsgFillAllFields)
		}
	}

	return nil
}

// ShareText renders the clipboard form: both texts, each followed by its reference.
func (q Quotation) ShareText() string {
	var b strings.Builder

	b.WriteString(q.PrimaryText)
	b.WriteString("\n")
	b.WriteString(ReferencePrefix)
	b.WriteString(q.PrimaryReference)
	b.WriteString("\n\n")
	b.WriteString(q.SecondaryText)
	b.WriteString("\n")
	b.WriteString(ReferencePrefix)
	b.WriteString(q.SecondaryReference)

	return b.String()
}

// Matches reports whether the search term occurs in the quotation.
// Chinese fields match case-sensitively, English fields ignore case.
// An empty term matches everything.
func (q Quotation) Matches(term string) bool {
	if term == "" {
		return true
	}

	if strings.Contains(q.PrimaryText, term) || strings.Contains(q.PrimaryReference, term) {
		return true
	}

	lower := strings.ToLower(term)

	return strings.Contains(strings.ToLower(q.SecondaryText), lower) ||
		strings.Contains(strings.ToLower(q.SecondaryReference), lower)
}

// Indexed pairs a quotation with its 1-based position in the collection.
type Indexed struct {
	Quotation
	Position int
}

// Filter returns the quotations matching term, keeping their original positions.
func Filter(items []Quotation, term string) []Indexed {
	out := make([]Indexed, 0, len(items))

	for i, q := range items {
		if q.Matches(term) {
			out = append(out, Indexed{Quotation: q, Position: i + 1})
		}
	}

	return out
}

// Backdrop is a resolved background image for the viewer.
type Backdrop struct {
	URL       string
	Seed      int64
	FetchedAt time.Time
}

var zhWeekdays = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// FormatDateZH renders t the way the dashboard shows today's date,
// e.g. 2024年3月5日星期二.
func FormatDateZH(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日%s", t.Year(), int(t.Month()), t.Day(), zhWeekdays[t.Weekday()])
}
