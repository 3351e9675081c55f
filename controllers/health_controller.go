package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tourwithmark/engagement/utils"
)

// HealthController answers liveness probes.
type HealthController struct {
	now func() time.Time
}

func NewHealthController() *HealthController { return &HealthController{now: time.Now} }

// Health reports the service is up. It does not touch the database.
func (h *HealthController) Health(ctx *gin.Context) {
	utils.JSON(ctx, http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
