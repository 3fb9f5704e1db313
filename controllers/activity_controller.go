package controllers

import (
	"net/http"
	"townsquare-api/services"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	aggregator *services.ActivityAggregator
}

func NewActivityController(aggregator *services.ActivityAggregator) *ActivityController {
	return &ActivityController{aggregator: aggregator}
}

// GetOverview recomputes and returns the caller's activity snapshot.
// Clients call this after a relevant bus event and when the UI regains
// focus — the reconciliation pull that catches changes made in another
// tab or on another device, since bus delivery is in-process only.
func (ac *ActivityController) GetOverview(c *gin.Context) {
	userID := c.GetString("user_id")

	snapshot := ac.aggregator.Snapshot(c.Request.Context(), userID)
	c.JSON(http.StatusOK, snapshot)
}
