package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tourwithmark/engagement/middleware"
	"github.com/tourwithmark/engagement/store"
	"github.com/tourwithmark/engagement/utils"
)

// PageViewController records navigation events from the page tracker script.
type PageViewController struct {
	store          PageViewStore
	cache          *utils.Cache
	logger         *zap.Logger
	trustForwarded bool
}

// NewPageViewController creates a new PageViewController instance. cache may be nil.
func NewPageViewController(s PageViewStore, cache *utils.Cache, logger *zap.Logger, trustForwarded bool) *PageViewController {
	return &PageViewController{store: s, cache: cache, logger: logger, trustForwarded: trustForwarded}
}

// pageViewRequest holds the tracker's fields as free text. Strings are taken as is, null
// becomes empty, and any other JSON value is kept as its JSON text.
type pageViewRequest map[string]json.RawMessage

func (r pageViewRequest) text(key string) string {
	raw, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if t := strings.TrimSpace(string(raw)); t != "null" {
		return t
	}
	return ""
}

// RecordPageView appends one event. Missing or non-string fields never reject the write;
// only a body that is not a JSON object is a 400.
func (p *PageViewController) RecordPageView(ctx *gin.Context) {
	var req pageViewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	id, err := p.store.RecordPageView(ctx.Request.Context(), store.PageViewInput{
		Path:        req.text("path"),
		Title:       req.text("title"),
		Referrer:    req.text("referrer"),
		SessionID:   req.text("sessionId"),
		Fingerprint: middleware.VisitorFingerprint(ctx, p.trustForwarded),
	})
	if err != nil {
		respondError(ctx, p.logger, "record page view", err, "Failed to record page view")
		return
	}

	utils.PageViewsRecorded.Inc()
	p.cache.Invalidate(ctx.Request.Context(), utils.CacheKeyAnalytics, utils.CacheKeyDashboard)

	utils.JSON(ctx, http.StatusOK, gin.H{"success": true, "id": id})
}
