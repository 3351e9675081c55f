package store

import (
	"context"
	"html"
	"strings"

	"github.com/tourwithmark/engagement/models"
)

// PageViewInput carries one navigation event. Every field is free text and may be empty.
type PageViewInput struct {
	Path        string
	Title       string
	Referrer    string
	SessionID   string
	Fingerprint string
}

// RecordPageView appends one row and returns its id. Repeated calls are never deduplicated.
func (s *Store) RecordPageView(ctx context.Context, in PageViewInput) (uint, error) {
	pv := models.PageView{
		PagePath:        in.Path,
		PageTitle:       s.cleanTitle(in.Title),
		UserFingerprint: in.Fingerprint,
		ViewedAt:        s.timestamp(),
		Referrer:        in.Referrer,
		SessionID:       in.SessionID,
	}
	if err := s.db.WithContext(ctx).Create(&pv).Error; err != nil {
		return 0, wrap("record page view", err)
	}
	return pv.ID, nil
}

// cleanTitle strips markup from document titles; the dashboard renders them as HTML.
func (s *Store) cleanTitle(title string) string {
	if !strings.ContainsAny(title, "<>") {
		return title
	}
	return strings.TrimSpace(html.UnescapeString(s.titlePolicy.Sanitize(title)))
}
