package httppresentation

import (
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application/dashboard"
	apporder "github.com/Zhima-Mochi/minimarket/internal/application/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/shopspring/decimal"
)

// money renders a decimal as a bare JSON number without losing precision.
type money decimal.Decimal

func (m money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).String()), nil
}

type productView struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Category               string    `json:"category"`
	Description            string    `json:"description"`
	Price                  money     `json:"price"`
	Stock                  int       `json:"stock"`
	ImagePath              string    `json:"imagePath"`
	IsAvailableForPurchase bool      `json:"isAvailableForPurchase"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func toProductView(p *product.Product) productView {
	return productView{
		ID:                     p.ID,
		Name:                   p.Name,
		Category:               p.Category,
		Description:            p.Description,
		Price:                  money(p.Price),
		Stock:                  p.Stock,
		ImagePath:              p.ImagePath,
		IsAvailableForPurchase: p.Available,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func toProductViews(ps []*product.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProductView(p))
	}
	return out
}

type orderLineView struct {
	ID                  string    `json:"id"`
	CustomerID          string    `json:"customerId"`
	ProductID           string    `json:"productId"`
	Quantity            int       `json:"quantity"`
	PricePaidInPeso     money     `json:"pricePaidInPeso"`
	Address             string    `json:"address"`
	SpecialInstructions string    `json:"specialInstructions"`
	OrderGroupID        string    `json:"orderGroupId"`
	ShippingID          string    `json:"shippingId"`
	ShippingStatus      string    `json:"shippingStatus"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`

	Product *lineProductView  `json:"product"`
	User    *lineCustomerView `json:"user"`
}

type lineProductView struct {
	Name      string `json:"name"`
	ImagePath string `json:"imagePath"`
	Price     money  `json:"price"`
}

type lineCustomerView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func toOrderLineView(l *order.Line, parties apporder.Parties) orderLineView {
	v := orderLineView{
		ID:                  l.ID,
		CustomerID:          l.CustomerID,
		ProductID:           l.ProductID,
		Quantity:            l.Quantity,
		PricePaidInPeso:     money(l.PricePaid),
		Address:             l.Address,
		SpecialInstructions: l.SpecialInstructions,
		OrderGroupID:        l.GroupID,
		ShippingID:          l.ShippingID,
		ShippingStatus:      string(l.ShippingStatus),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
	if p, ok := parties.Product(l.ProductID); ok {
		v.Product = &lineProductView{Name: p.Name, ImagePath: p.ImagePath, Price: money(p.Price)}
	}
	if c, ok := parties.Customer(l.CustomerID); ok {
		v.User = &lineCustomerView{Name: c.Name, Email: c.Email}
	}
	return v
}

func toOrderLineViews(ls []*order.Line, parties apporder.Parties) []orderLineView {
	out := make([]orderLineView, 0, len(ls))
	for _, l := range ls {
		out = append(out, toOrderLineView(l, parties))
	}
	return out
}

type orderGroupView struct {
	OrderGroupID string          `json:"orderGroupId"`
	ShippingID   string          `json:"shippingId"`
	CustomerID   string          `json:"customerId"`
	Address      string          `json:"address"`
	Total        money           `json:"totalInPeso"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Orders       []orderLineView `json:"orders"`
}

func toOrderGroupViews(gs []apporder.GroupView, parties apporder.Parties) []orderGroupView {
	out := make([]orderGroupView, 0, len(gs))
	for _, g := range gs {
		out = append(out, orderGroupView{
			OrderGroupID: g.GroupID,
			ShippingID:   g.ShippingID,
			CustomerID:   g.CustomerID,
			Address:      g.Address,
			Total:        money(g.Total),
			CreatedAt:    g.CreatedAt,
			UpdatedAt:    g.UpdatedAt,
			Orders:       toOrderLineViews(g.Lines, parties),
		})
	}
	return out
}

type reviewView struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func toReviewView(r *review.Review) reviewView {
	return reviewView{ID: r.ID, OrderID: r.OrderLineID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
}

type topProductView struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Sales     int    `json:"sales"`
}

type monthlyEarningsView struct {
	Month    string `json:"month"`
	Label    string `json:"label"`
	Earnings money  `json:"earnings"`
}

type summaryView struct {
	Timeframe       string                `json:"timeframe"`
	TotalProducts   int                   `json:"totalProducts"`
	TotalOrders     int                   `json:"totalOrders"`
	OutOfStock      int                   `json:"outOfStock"`
	TotalEarnings   money                 `json:"totalEarnings"`
	PeriodOrders    int                   `json:"periodOrders"`
	PeriodEarnings  money                 `json:"periodEarnings"`
	UpdatedOrders   int                   `json:"updatedOrders"`
	TopProducts     []topProductView      `json:"topProducts"`
	EarningsHistory []monthlyEarningsView `json:"earningsHistory"`
}

func toSummaryView(s *dashboard.Summary) summaryView {
	v := summaryView{
		Timeframe:       string(s.Timeframe),
		TotalProducts:   s.TotalProducts,
		TotalOrders:     s.TotalOrders,
		OutOfStock:      s.OutOfStock,
		TotalEarnings:   money(s.TotalEarnings),
		PeriodOrders:    s.PeriodOrders,
		PeriodEarnings:  money(s.PeriodEarnings),
		UpdatedOrders:   s.UpdatedOrders,
		TopProducts:     make([]topProductView, 0, len(s.TopProducts)),
		EarningsHistory: make([]monthlyEarningsView, 0, len(s.EarningsHistory)),
	}
	for _, p := range s.TopProducts {
		v.TopProducts = append(v.TopProducts, topProductView{ProductID: p.ProductID, Name: p.Name, Sales: p.Sales})
	}
	for _, m := range s.EarningsHistory {
		v.EarningsHistory = append(v.EarningsHistory, monthlyEarningsView{Month: m.Month, Label: m.Label, Earnings: money(m.Earnings)})
	}
	return v
}

type activityView struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
