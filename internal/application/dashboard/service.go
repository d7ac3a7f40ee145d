package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const (
	dashboardService = "dashboard-service"
	useCaseSummary   = "dashboard.summary"
	useCaseActivity  = "dashboard.activity"
	topProductsLimit = 5
)

type Timeframe string

const (
	LastWeek    Timeframe = "lastWeek"
	LastMonth   Timeframe = "lastMonth"
	Last6Months Timeframe = "last6Months"
	LastYear    Timeframe = "lastYear"
)

// ParseTimeframe accepts the four dashboard windows; empty means LastYear.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case LastWeek, LastMonth, Last6Months, LastYear:
		return tf, nil
	case "":
		return LastYear, nil
	default:
		return "", apperr.Validation(fmt.Sprintf("unknown timeframe %q", s))
	}
}

func (tf Timeframe) since(now time.Time) time.Time {
	switch tf {
	case LastWeek:
		return now.AddDate(0, 0, -7)
	case LastMonth:
		return now.AddDate(0, -1, 0)
	case Last6Months:
		return now.AddDate(0, -6, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

func (tf Timeframe) months() int {
	if tf == Last6Months {
		return 6
	}
	return 12
}

type TopProduct struct {
	ProductID string
	Name      string
	Sales     int
}

type MonthlyEarnings struct {
	Month    string // 2006-01
	Label    string // January
	Earnings decimal.Decimal
}

// Summary totals cover all time; Period* figures cover the requested timeframe only.
type Summary struct {
	Timeframe       Timeframe
	TotalProducts   int
	TotalOrders     int
	OutOfStock      int
	TotalEarnings   decimal.Decimal
	PeriodOrders    int
	PeriodEarnings  decimal.Decimal
	UpdatedOrders   int
	TopProducts     []TopProduct
	EarningsHistory []MonthlyEarnings
}

type ActivityEntry struct {
	ID        string
	Type      string
	Message   string
	Timestamp time.Time
}

type Service struct {
	products product.Repository
	orders   order.Repository
	now      func() time.Time
	obs      application.Instruments
}

func NewService(products product.Repository, orders order.Repository, tel observability.Observability) *Service {
	return &Service{
		products: products,
		orders:   orders,
		now:      func() time.Time { return time.Now().UTC() },
		obs:      application.NewInstruments(tel, dashboardService),
	}
}

func (s *Service) Summary(ctx context.Context, actor *auth.Identity, timeframe string) (_ *Summary, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseSummary, "DashboardSummary", attribute.String("dashboard.timeframe", timeframe))
	defer func() { exec.End(ctx, err) }()

	if err := auth.Require(actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	tf, err := ParseTimeframe(timeframe)
	if err != nil {
		return nil, err
	}

	products, err := s.products.List(ctx, product.Filter{})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	lines, err := s.orders.List(ctx, order.Filter{})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}

	now := s.now()
	since := tf.since(now)
	out := &Summary{
		Timeframe:      tf,
		TotalProducts:  len(products),
		TotalOrders:    len(lines),
		TotalEarnings:  decimal.Zero,
		PeriodEarnings: decimal.Zero,
	}

	names := make(map[string]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
		if p.OutOfStock() {
			out.OutOfStock++
		}
	}

	history := monthBuckets(now, tf.months())
	index := make(map[string]int, len(history))
	for i, m := range history {
		index[m.Month] = i
	}

	sales := make(map[string]int)
	for _, l := range lines {
		out.TotalEarnings = out.TotalEarnings.Add(l.PricePaid)
		if !l.CreatedAt.Before(since) {
			out.PeriodOrders++
			out.PeriodEarnings = out.PeriodEarnings.Add(l.PricePaid)
		}
		if l.ShippingStatus != order.StatusNotShipped {
			out.UpdatedOrders++
		}
		sales[l.ProductID]++
		if i, ok := index[l.CreatedAt.UTC().Format("2006-01")]; ok {
			history[i].Earnings = history[i].Earnings.Add(l.PricePaid)
		}
	}
	out.EarningsHistory = history
	out.TopProducts = topProducts(sales, names)

	exec.Field("timeframe", string(tf))
	return out, nil
}

// monthBuckets returns n calendar months ending with now's month, oldest first.
func monthBuckets(now time.Time, n int) []MonthlyEarnings {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]MonthlyEarnings, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, -(n - 1 - i), 0)
		out[i] = MonthlyEarnings{Month: m.Format("2006-01"), Label: m.Month().String(), Earnings: decimal.Zero}
	}
	return out
}

func topProducts(sales map[string]int, names map[string]string) []TopProduct {
	out := make([]TopProduct, 0, len(sales))
	for id, n := range sales {
		name, ok := names[id]
		if !ok {
			name = "Unknown"
		}
		out = append(out, TopProduct{ProductID: id, Name: name, Sales: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sales != out[j].Sales {
			return out[i].Sales > out[j].Sales
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > topProductsLimit {
		out = out[:topProductsLimit]
	}
	return out
}

// Activity merges product and order line history, newest first. search matches ids and product names.
func (s *Service) Activity(ctx context.Context, actor *auth.Identity, search string) (_ []ActivityEntry, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseActivity, "DashboardActivity")
	defer func() { exec.End(ctx, err) }()

	if err := auth.Require(actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	search = strings.ToLower(strings.TrimSpace(search))

	products, err := s.products.List(ctx, product.Filter{})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	lines, err := s.orders.List(ctx, order.Filter{})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}

	out := make([]ActivityEntry, 0, 2*(len(products)+len(lines)))
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.ID+" "+p.Name), search) {
			continue
		}
		out = append(out,
			ActivityEntry{ID: "product-" + p.ID, Type: "product", Message: "Product Created: " + p.Name, Timestamp: p.CreatedAt},
			ActivityEntry{ID: "product-update-" + p.ID, Type: "product-update", Message: "Product Updated: " + p.Name, Timestamp: p.UpdatedAt},
		)
	}
	for _, l := range lines {
		if search != "" && !strings.Contains(strings.ToLower(l.ID+" "+l.GroupID), search) {
			continue
		}
		out = append(out,
			ActivityEntry{ID: "order-" + l.ID, Type: "order", Message: "Order Created: " + l.ID, Timestamp: l.CreatedAt},
			ActivityEntry{ID: "order-update-" + l.ID, Type: "order-update", Message: "Order Updated: " + l.ID, Timestamp: l.UpdatedAt},
		)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	exec.Field("results", len(out))
	return out, nil
}
