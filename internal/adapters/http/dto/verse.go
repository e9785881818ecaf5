package dto

import (
	"github.com/jsamuelsen/verse-service/internal/app"
	"github.com/jsamuelsen/verse-service/internal/domain"
)

// VerseRequest is the body of create and update calls. Fields are trimmed
// before the notempty check.
type VerseRequest struct {
	Zh    string `json:"zh"    form:"zh"    validate:"notempty"`
	RefZh string `json:"refZh" form:"refZh" validate:"notempty"`
	En    string `json:"en"    form:"en"    validate:"notempty"`
	RefEn string `json:"refEn" form:"refEn" validate:"notempty"`
}

// Quotation converts the request to a domain value.
func (r *VerseRequest) Quotation() domain.Quotation {
	return domain.Quotation{
		PrimaryText:        r.Zh,
		PrimaryReference:   r.RefZh,
		SecondaryText:      r.En,
		SecondaryReference: r.RefEn,
	}.Trimmed()
}

// VerseResponse is one quotation on the wire.
type VerseResponse struct {
	ID       string `json:"id"`
	Position int    `json:"position,omitempty"`
	Zh       string `json:"zh"`
	RefZh    string `json:"refZh"`
	En       string `json:"en"`
	RefEn    string `json:"refEn"`
}

// NewVerseResponse converts q without a position.
func NewVerseResponse(q *domain.Quotation) VerseResponse {
	return VerseResponse{
		ID:    q.ID,
		Zh:    q.PrimaryText,
		RefZh: q.PrimaryReference,
		En:    q.SecondaryText,
		RefEn: q.SecondaryReference,
	}
}

// NewIndexedResponse converts a positioned quotation.
func NewIndexedResponse(q *domain.Indexed) VerseResponse {
	resp := NewVerseResponse(&q.Quotation)
	resp.Position = q.Position

	return resp
}

// VerseListResponse is the admin list result.
type VerseListResponse struct {
	Items []VerseResponse `json:"items"`
	Total int             `json:"total"`
	Query string          `json:"query,omitempty"`
}

// NewVerseListResponse converts search results. Total counts the matches.
func NewVerseListResponse(items []domain.Indexed, query string) VerseListResponse {
	out := make([]VerseResponse, len(items))
	for i := range items {
		out[i] = NewIndexedResponse(&items[i])
	}

	return VerseListResponse{Items: out, Total: len(out), Query: query}
}

// RandomVerseResponse is the viewer pick. Verse is nil and Placeholder set
// when the collection is empty.
type RandomVerseResponse struct {
	Verse       *VerseResponse `json:"verse"`
	Placeholder string         `json:"placeholder,omitempty"`
	Background  string         `json:"background,omitempty"`
}

// ShareResponse carries the clipboard text of one quotation.
type ShareResponse struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// BackgroundResponse is the current background image.
type BackgroundResponse struct {
	URL  string `json:"url"`
	Seed int64  `json:"seed"`
}

// LoginRequest is the login body.
type LoginRequest struct {
	Password string `json:"password" form:"password"`
}

// PasswordRequest is the password change body.
type PasswordRequest struct {
	Password string `json:"password" form:"password"`
}

// MessageResponse confirms an operation with the operator-facing message.
type MessageResponse struct {
	Message string `json:"message"`
}

// SavedVerseResponse confirms create and update.
type SavedVerseResponse struct {
	Message string        `json:"message"`
	Verse   VerseResponse `json:"verse"`
}

// ImportResponse confirms an import.
type ImportResponse struct {
	Message  string `json:"message"`
	Imported int    `json:"imported"`
}

// StatsResponse is the dashboard summary.
type StatsResponse struct {
	Total int    `json:"total"`
	Date  string `json:"date"`
}

// NewStatsResponse converts app.Stats.
func NewStatsResponse(s app.Stats) StatsResponse {
	return StatsResponse{Total: s.Total, Date: s.Date}
}
