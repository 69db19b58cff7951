package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hazuki-dev/picshift/stats"
)

// StatsController exposes the conversion counters to the local dashboard.
type StatsController struct {
	agg *stats.Aggregator
}

func NewStatsController(agg *stats.Aggregator) *StatsController {
	return &StatsController{agg: agg}
}

// HandleStats returns counters for ?period=today|month|all (default all).
func (ctrl *StatsController) HandleStats(c *gin.Context) {
	switch c.DefaultQuery("period", "all") {
	case "today":
		c.JSON(http.StatusOK, ctrl.agg.Today())
	case "month":
		c.JSON(http.StatusOK, ctrl.agg.Month())
	case "all":
		c.JSON(http.StatusOK, ctrl.agg.Totals())
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be today, month, or all"})
	}
}

// HandleHealth is the liveness probe.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
