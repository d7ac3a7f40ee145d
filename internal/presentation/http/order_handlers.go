package httppresentation

import (
	"net/http"

	apporder "github.com/Zhima-Mochi/minimarket/internal/application/order"
	"github.com/Zhima-Mochi/minimarket/internal/application/shipping"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type cartItemRequest struct {
	ProductID           string           `json:"productId" binding:"required"`
	Quantity            int              `json:"quantity" binding:"required,gt=0"`
	Price               *decimal.Decimal `json:"price"`
	SpecialInstructions string           `json:"specialInstructions"`
}

// placeOrderRequest carries either a cart or, for older clients, a single product line.
type placeOrderRequest struct {
	CustomerID string            `json:"customerId"`
	UserID     string            `json:"userId"`
	Address    string            `json:"address" binding:"required"`
	CartItems  []cartItemRequest `json:"cartItems" binding:"omitempty,dive"`

	ProductID           string           `json:"productId"`
	Quantity            int              `json:"quantity"`
	PricePaidInPeso     *decimal.Decimal `json:"pricePaidInPeso"`
	SpecialInstructions string           `json:"specialInstructions"`
}

func (r placeOrderRequest) customer() string {
	if r.CustomerID != "" {
		return r.CustomerID
	}
	return r.UserID
}

func (h *Handler) handlePlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	in := apporder.PlaceOrderInput{
		Actor:      identityFrom(c),
		CustomerID: req.customer(),
		Address:    req.Address,
	}
	single := req.CartItems == nil
	if single {
		if req.ProductID == "" || req.Quantity <= 0 {
			writeError(c, apperr.Validation("Missing required fields"))
			return
		}
		in.Items = []apporder.CartItem{{
			ProductID:           req.ProductID,
			Quantity:            req.Quantity,
			LineTotal:           req.PricePaidInPeso,
			SpecialInstructions: req.SpecialInstructions,
		}}
	} else {
		in.Items = make([]apporder.CartItem, 0, len(req.CartItems))
		for _, item := range req.CartItems {
			ci := apporder.CartItem{
				ProductID:           item.ProductID,
				Quantity:            item.Quantity,
				SpecialInstructions: item.SpecialInstructions,
			}
			// A zero price means "use the catalog price".
			if item.Price != nil && !item.Price.IsZero() {
				ci.Price = item.Price
			}
			in.Items = append(in.Items, ci)
		}
	}

	res, err := h.svc.Checkout.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	parties, ok := h.partiesOf(c, res.Lines)
	if !ok {
		return
	}
	if single {
		c.JSON(http.StatusCreated, toOrderLineView(res.Lines[0], parties))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"orderGroupId": res.GroupID,
		"shippingId":   res.ShippingID,
		"orders":       toOrderLineViews(res.Lines, parties),
	})
}

// partiesOf resolves the product and customer summaries shown on lines, writing the error response on failure.
func (h *Handler) partiesOf(c *gin.Context, lines []*order.Line) (apporder.Parties, bool) {
	parties, err := h.svc.Orders.Parties(c.Request.Context(), lines)
	if err != nil {
		writeError(c, err)
		return apporder.Parties{}, false
	}
	return parties, true
}

func (h *Handler) handleListOrders(c *gin.Context) {
	lines, err := h.svc.Orders.List(c.Request.Context(), apporder.ListInput{
		Actor:      identityFrom(c),
		Status:     c.Query("status"),
		CustomerID: c.Query("userId"),
		Search:     c.Query("q"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	parties, ok := h.partiesOf(c, lines)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderLineViews(lines, parties))
}

func (h *Handler) handleListGroups(c *gin.Context) {
	groups, err := h.svc.Orders.ListGroups(c.Request.Context(), identityFrom(c), c.Query("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	var lines []*order.Line
	for _, g := range groups {
		lines = append(lines, g.Lines...)
	}
	parties, ok := h.partiesOf(c, lines)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderGroupViews(groups, parties))
}

type updateShippingRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

func (h *Handler) handleUpdateShipping(c *gin.Context) {
	var req updateShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	line, err := h.svc.Shipping.Execute(c.Request.Context(), shipping.UpdateStatusInput{
		Actor:  identityFrom(c),
		LineID: req.OrderID,
		Status: req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	parties, ok := h.partiesOf(c, []*order.Line{line})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderLineView(line, parties))
}
