package shipping

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	shippingService     = "shipping-service"
	useCaseUpdateStatus = "shipping.update_status"
)

type UpdateStatusInput struct {
	Actor  *auth.Identity
	LineID string
	Status string
}

// UpdateStatusUseCase moves one order line to a new shipping status.
// In strict mode only forward moves are accepted; otherwise any known status is.
type UpdateStatusUseCase struct {
	store     uow.Store
	publisher domoutbox.Publisher
	strict    bool
	obs       application.Instruments
}

func NewUpdateStatusUseCase(store uow.Store, publisher domoutbox.Publisher, strict bool, tel observability.Observability) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		store:     store,
		publisher: publisher,
		strict:    strict,
		obs:       application.NewInstruments(tel, shippingService),
	}
}

var _ application.UseCase[UpdateStatusInput, *domain.Line] = (*UpdateStatusUseCase)(nil)

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, in UpdateStatusInput) (_ *domain.Line, err error) {
	ctx, exec := uc.obs.Start(ctx, useCaseUpdateStatus, "UpdateShippingStatus",
		attribute.String("order.line_id", in.LineID),
		attribute.String("shipping.to", in.Status),
		attribute.Bool("shipping.strict", uc.strict),
	)
	defer func() { exec.End(ctx, err) }()
	exec.Field("line_id", in.LineID)
	exec.Field("to", in.Status)

	if err := auth.Require(in.Actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.LineID) == "" {
		return nil, apperr.Validation("order id is required")
	}
	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	var (
		line    *domain.Line
		from    domain.ShippingStatus
		changed bool
	)
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		l, err := tx.Orders.Get(ctx, in.LineID)
		if err != nil {
			return err
		}
		from = l.ShippingStatus
		if uc.strict {
			changed, err = l.TransitionTo(to)
		} else {
			changed, err = l.OverrideStatus(to)
		}
		if err != nil {
			return err
		}
		if changed {
			if err := tx.Orders.Update(ctx, l); err != nil {
				return err
			}
		}
		line = l
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}

	exec.Field("from", string(from))
	if !changed {
		exec.Status("UNCHANGED")
		return line, nil
	}
	if perr := uc.obs.Publish(ctx, uc.publisher, domain.NewShippingStatusChangedEvent(line, from, in.Actor.UserID)); perr != nil {
		exec.Field("event_publish_error", perr.Error())
	}
	return line, nil
}
