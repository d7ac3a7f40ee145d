package httppresentation

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) handleDashboard(c *gin.Context) {
	sum, err := h.svc.Dashboard.Summary(c.Request.Context(), identityFrom(c), c.Query("timeframe"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryView(sum))
}

func (h *Handler) handleActivity(c *gin.Context) {
	entries, err := h.svc.Dashboard.Activity(c.Request.Context(), identityFrom(c), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]activityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, activityView{ID: e.ID, Type: e.Type, Message: e.Message, Timestamp: e.Timestamp})
	}
	c.JSON(http.StatusOK, out)
}
