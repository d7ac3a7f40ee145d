package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/amount"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService      = "order-service"
	useCasePlaceOrder = "order.place"
)

var ErrProductUnavailable = apperr.Validation("order: product is not available for purchase")

// PlaceOrderUseCase turns a cart into one order group. The stock check, every line insert
// and every stock decrement run in a single unit of work, so a checkout fully commits or has no effect.
type PlaceOrderUseCase struct {
	store       uow.Store
	ids         GroupIDGenerator
	publisher   domoutbox.Publisher
	obs         application.Instruments
	lineCounter observability.Counter // checkout_lines_total{outcome}
}

func NewPlaceOrderUseCase(
	store uow.Store,
	ids GroupIDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		store:       store,
		ids:         ids,
		publisher:   publisher,
		obs:         application.NewInstruments(tel, orderService),
		lineCounter: observability.MetricsOf(tel).Counter(observability.MCheckoutLines),
	}
}

type CartItem struct {
	ProductID string
	Quantity  int
	// Price, when set, is the unit price charged instead of the product's current price.
	Price *decimal.Decimal
	// LineTotal, when set, is the amount charged for the whole line and wins over Price.
	LineTotal           *decimal.Decimal
	SpecialInstructions string
}

type PlaceOrderInput struct {
	// Actor is the authenticated caller; nil means a trusted internal caller.
	Actor      *auth.Identity
	CustomerID string
	Address    string
	Items      []CartItem
}

type PlaceOrderResult struct {
	GroupID    string
	ShippingID string
	Lines      []*domain.Line
}

func (r *PlaceOrderResult) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.PricePaid)
	}
	return total
}

func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	ctx, exec := uc.obs.Start(ctx, useCasePlaceOrder, "PlaceOrder",
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.Int("order.items", len(cmd.Items)),
	)
	span := exec.Span()
	exec.Field("items", len(cmd.Items))
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		uc.lineCounter.Add(float64(len(cmd.Items)), observability.L("outcome", outcome))
		exec.End(ctx, err)
	}()

	if cmd.Actor != nil {
		if cmd.CustomerID == "" {
			cmd.CustomerID = cmd.Actor.UserID
		}
		if !cmd.Actor.Staff() && cmd.CustomerID != cmd.Actor.UserID {
			exec.Fail("CUSTOMER_MISMATCH")
			return nil, fmt.Errorf("%w: customers may only order for themselves", auth.ErrForbidden)
		}
	}
	if strings.TrimSpace(cmd.CustomerID) == "" {
		exec.Fail("CUSTOMER_ID_REQUIRED")
		return nil, apperr.Validation("customer id is required")
	}
	if strings.TrimSpace(cmd.Address) == "" {
		exec.Fail("ADDRESS_REQUIRED")
		return nil, apperr.Validation("address is required")
	}
	if len(cmd.Items) == 0 {
		exec.Fail("CART_EMPTY")
		return nil, apperr.Validation("cart has no items")
	}
	requests := make([]StockRequest, 0, len(cmd.Items))
	for i, item := range cmd.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			exec.Fail("PRODUCT_ID_REQUIRED")
			return nil, apperr.Validation(fmt.Sprintf("item %d: product id is required", i))
		}
		if item.Quantity <= 0 {
			exec.Fail("QUANTITY_INVALID")
			return nil, apperr.Validation(fmt.Sprintf("item %d: quantity must be greater than zero", i))
		}
		if err := amount.Count(item.Quantity); err != nil {
			exec.Fail("QUANTITY_INVALID")
			return nil, fmt.Errorf("item %d: quantity: %w", i, err)
		}
		if err := checkPrice(item.Price); err != nil {
			exec.Fail("PRICE_INVALID")
			return nil, fmt.Errorf("item %d: price: %w", i, err)
		}
		if err := checkPrice(item.LineTotal); err != nil {
			exec.Fail("PRICE_INVALID")
			return nil, fmt.Errorf("item %d: line total: %w", i, err)
		}
		requests = append(requests, StockRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err := ctx.Err(); err != nil {
		exec.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	var group domain.Group
	group.GroupID, group.ShippingID = uc.ids.NewGroupIDs()
	span.SetAttributes(attribute.String("order.group_id", group.GroupID))

	var (
		lines     []*domain.Line
		movements []inventory.StockAdjustedEvent
		failed    string
	)
	txErr := uc.store.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		lines, movements = lines[:0], movements[:0]

		if err := NewStockChecker(tx.Ledger).Check(ctx, requests); err != nil {
			failed = "INSUFFICIENT_STOCK"
			return err
		}
		span.AddEvent("order.stock_checked")

		for _, item := range cmd.Items {
			p, err := tx.Products.Get(ctx, item.ProductID)
			if err != nil {
				failed = "PRODUCT_LOAD_FAILED"
				return err
			}
			if !p.Available {
				failed = "PRODUCT_UNAVAILABLE"
				return fmt.Errorf("%w: %s", ErrProductUnavailable, p.ID)
			}
			unit := p.Price
			if item.Price != nil {
				unit = *item.Price
			}
			paid := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
			if item.LineTotal != nil {
				paid = *item.LineTotal
			}

			line, err := domain.NewLine(uc.ids.NewID(), group, domain.LineInput{
				CustomerID:          cmd.CustomerID,
				ProductID:           item.ProductID,
				Quantity:            item.Quantity,
				PricePaid:           paid,
				Address:             cmd.Address,
				SpecialInstructions: item.SpecialInstructions,
			})
			if err != nil {
				failed = "DOMAIN_CONSTRUCTION_FAILED"
				return err
			}
			if err := tx.Orders.Insert(ctx, line); err != nil {
				failed = "REPO_INSERT_FAILED"
				return err
			}
			remaining, err := tx.Ledger.Decrement(ctx, item.ProductID, item.Quantity)
			if err != nil {
				failed = "STOCK_DECREMENT_FAILED"
				if errors.Is(err, inventory.ErrInsufficientStock) {
					failed = "INSUFFICIENT_STOCK"
				}
				return err
			}
			lines = append(lines, line)
			movements = append(movements, inventory.NewStockAdjustedEvent(item.ProductID, inventory.AdjustmentCheckout, -item.Quantity, remaining))
		}
		return nil
	})
	if txErr != nil {
		if failed == "" {
			failed = "TX_FAILED"
		}
		exec.Fail(failed)
		return nil, application.WrapRepositoryError(txErr)
	}

	span.AddEvent("order.placed", trace.WithAttributes(
		attribute.String("order.group_id", group.GroupID),
		attribute.Int("order.lines", len(lines)),
	))
	exec.Field("order_group_id", group.GroupID)

	publishErr := uc.obs.Publish(ctx, uc.publisher, domain.NewOrderPlacedEvent(group, cmd.CustomerID, lines))
	for _, m := range movements {
		if perr := uc.obs.Publish(ctx, uc.publisher, m); perr != nil && publishErr == nil {
			publishErr = perr
		}
	}
	if publishErr != nil {
		exec.Status("EVENT_PUBLISH_FAILED")
		exec.Field("event_publish_error", publishErr.Error())
	}

	return &PlaceOrderResult{GroupID: group.GroupID, ShippingID: group.ShippingID, Lines: lines}, nil
}

// checkPrice validates an optional client-supplied amount.
func checkPrice(d *decimal.Decimal) error {
	if d == nil {
		return nil
	}
	if d.IsNegative() {
		return apperr.Validation("must be zero or greater")
	}
	return amount.Money(*d)
}
