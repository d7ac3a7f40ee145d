package review

import (
	"context"
	"errors"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domorder "github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minimarket/internal/domain/review"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	reviewService = "review-service"
	useCaseCreate = "review.create"
	useCaseList   = "review.list"
)

type IDGenerator interface {
	NewID() string
}

type CreateReviewInput struct {
	Actor       *auth.Identity
	OrderLineID string
	Rating      int
	Comment     string
}

// CreateReviewUseCase records a rating for a delivered order line. A line takes one review.
type CreateReviewUseCase struct {
	store     uow.Store
	ids       IDGenerator
	publisher domoutbox.Publisher
	obs       application.Instruments
}

func NewCreateReviewUseCase(store uow.Store, ids IDGenerator, publisher domoutbox.Publisher, tel observability.Observability) *CreateReviewUseCase {
	return &CreateReviewUseCase{
		store:     store,
		ids:       ids,
		publisher: publisher,
		obs:       application.NewInstruments(tel, reviewService),
	}
}

var _ application.UseCase[CreateReviewInput, *domain.Review] = (*CreateReviewUseCase)(nil)

func (uc *CreateReviewUseCase) Execute(ctx context.Context, in CreateReviewInput) (_ *domain.Review, err error) {
	ctx, exec := uc.obs.Start(ctx, useCaseCreate, "CreateReview",
		attribute.String("order.line_id", in.OrderLineID),
		attribute.Int("review.rating", in.Rating),
	)
	defer func() { exec.End(ctx, err) }()
	exec.Field("line_id", in.OrderLineID)

	if err := auth.Require(in.Actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OrderLineID) == "" {
		return nil, apperr.Validation("order id is required")
	}

	var created *domain.Review
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		line, err := tx.Orders.Get(ctx, in.OrderLineID)
		if err != nil {
			return err
		}
		if !in.Actor.Staff() && line.CustomerID != in.Actor.UserID {
			return auth.ErrForbidden
		}
		if !line.Delivered() {
			return domain.ErrNotDelivered
		}
		if _, err := tx.Reviews.FindByOrderLine(ctx, line.ID); err == nil {
			return domain.ErrAlreadyReviewed
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		r, err := domain.New(uc.ids.NewID(), line.ID, in.Rating, in.Comment)
		if err != nil {
			return err
		}
		if err := tx.Reviews.Insert(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}

	exec.Field("review_id", created.ID)
	if perr := uc.obs.Publish(ctx, uc.publisher, domain.NewCreatedEvent(created)); perr != nil {
		exec.Field("event_publish_error", perr.Error())
	}
	return created, nil
}

// QueryService lists reviews. Customers see the reviews on their own lines only.
type QueryService struct {
	reviews domain.Repository
	orders  domorder.Repository
	obs     application.Instruments
}

func NewQueryService(reviews domain.Repository, orders domorder.Repository, tel observability.Observability) *QueryService {
	return &QueryService{reviews: reviews, orders: orders, obs: application.NewInstruments(tel, reviewService)}
}

func (s *QueryService) List(ctx context.Context, actor *auth.Identity) (_ []*domain.Review, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseList, "ListReviews")
	defer func() { exec.End(ctx, err) }()

	if err := auth.Require(actor); err != nil {
		return nil, err
	}

	var lineIDs []string
	if !actor.Staff() {
		lines, err := s.orders.List(ctx, domorder.Filter{CustomerID: actor.UserID})
		if err != nil {
			return nil, application.WrapRepositoryError(err)
		}
		if len(lines) == 0 {
			return []*domain.Review{}, nil
		}
		lineIDs = make([]string, 0, len(lines))
		for _, l := range lines {
			lineIDs = append(lineIDs, l.ID)
		}
	}

	out, err := s.reviews.List(ctx, lineIDs)
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	exec.Field("results", len(out))
	return out, nil
}
