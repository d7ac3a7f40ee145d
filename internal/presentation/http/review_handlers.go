package httppresentation

import (
	"net/http"

	appreview "github.com/Zhima-Mochi/minimarket/internal/application/review"
	"github.com/gin-gonic/gin"
)

type createReviewRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required"`
}

func (h *Handler) handleCreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	r, err := h.svc.Reviews.Execute(c.Request.Context(), appreview.CreateReviewInput{
		Actor:       identityFrom(c),
		OrderLineID: req.OrderID,
		Rating:      req.Rating,
		Comment:     req.Comment,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewView(r))
}

func (h *Handler) handleListReviews(c *gin.Context) {
	rs, err := h.svc.ReviewQuery.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]reviewView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReviewView(r))
	}
	c.JSON(http.StatusOK, out)
}
