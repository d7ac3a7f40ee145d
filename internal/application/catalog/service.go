package catalog

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application"
	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/Zhima-Mochi/minimarket/internal/domain/uow"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const (
	catalogService      = "catalog-service"
	useCaseCreate       = "catalog.create"
	useCaseEdit         = "catalog.edit"
	useCaseAvailability = "catalog.set_availability"
	useCaseGet          = "catalog.get"
	useCaseList         = "catalog.list"
	useCaseListInactive = "catalog.list_deactivated"
	useCaseCategories   = "catalog.categories"
)

// ProductCache is a read-through cache for single products. Get reports a miss with ok=false.
type ProductCache interface {
	Get(ctx context.Context, id string) (p *product.Product, ok bool, err error)
	Set(ctx context.Context, p *product.Product) error
	Delete(ctx context.Context, id string) error
}

// ImageStore persists an uploaded product image and returns its public path.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type Image struct {
	Name string
	Data []byte
}

type CreateProductInput struct {
	Actor   *auth.Identity
	ID      string
	Details product.Details
	Stock   int
	Image   *Image
}

type EditProductInput struct {
	Actor   *auth.Identity
	ID      string
	Details product.Details
	// Image is optional; nil keeps the current one.
	Image *Image
}

type ListInput struct {
	Categories []string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Sort       string
}

type Service struct {
	store     uow.Store
	cache     ProductCache
	images    ImageStore
	publisher domoutbox.Publisher
	loads     singleflight.Group
	obs       application.Instruments
	lookups   observability.Counter // cache_lookups_total{result}
}

// NewService wires the catalog. cache may be nil, in which case reads go straight to the store.
func NewService(store uow.Store, cache ProductCache, images ImageStore, publisher domoutbox.Publisher, tel observability.Observability) *Service {
	return &Service{
		store:     store,
		cache:     cache,
		images:    images,
		publisher: publisher,
		obs:       application.NewInstruments(tel, catalogService),
		lookups:   observability.MetricsOf(tel).Counter(observability.MCacheLookups),
	}
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (_ *product.Product, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseCreate, "CreateProduct", attribute.String("product.id", in.ID))
	defer func() { exec.End(ctx, err) }()
	exec.Field("product_id", in.ID)

	if err := auth.Require(in.Actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	if in.Image == nil || len(in.Image.Data) == 0 {
		return nil, apperr.Validation("product image is required")
	}
	// Validate before writing the image so a bad form leaves no file behind.
	if _, err := product.New(in.ID, in.Details, in.Stock, ""); err != nil {
		return nil, err
	}
	path, err := s.saveImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}
	p, err := product.New(in.ID, in.Details, in.Stock, path)
	if err != nil {
		return nil, err
	}
	if err := s.store.Repos().Products.Insert(ctx, p); err != nil {
		return nil, application.WrapRepositoryError(err)
	}

	s.changed(ctx, exec, p)
	return p, nil
}

func (s *Service) EditProduct(ctx context.Context, in EditProductInput) (_ *product.Product, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseEdit, "EditProduct", attribute.String("product.id", in.ID))
	defer func() { exec.End(ctx, err) }()
	exec.Field("product_id", in.ID)

	if err := auth.Require(in.Actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	var path string
	if in.Image != nil && len(in.Image.Data) > 0 {
		if path, err = s.saveImage(ctx, in.Image); err != nil {
			return nil, err
		}
	}
	p, err := s.update(ctx, in.ID, func(p *product.Product) error {
		return p.Edit(in.Details, path)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, exec, p)
	return p, nil
}

func (s *Service) Deactivate(ctx context.Context, actor *auth.Identity, id string) (*product.Product, error) {
	return s.setAvailable(ctx, actor, id, false)
}

func (s *Service) Reactivate(ctx context.Context, actor *auth.Identity, id string) (*product.Product, error) {
	return s.setAvailable(ctx, actor, id, true)
}

func (s *Service) setAvailable(ctx context.Context, actor *auth.Identity, id string, available bool) (_ *product.Product, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseAvailability, "SetProductAvailability",
		attribute.String("product.id", id),
		attribute.Bool("product.available", available),
	)
	defer func() { exec.End(ctx, err) }()
	exec.Field("product_id", id)
	exec.Field("available", available)

	if err := auth.Require(actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	p, err := s.update(ctx, id, func(p *product.Product) error {
		if available {
			p.Reactivate()
		} else {
			p.Deactivate()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, exec, p)
	return p, nil
}

// GetProduct reads through the cache. Concurrent misses for one id share a single store load.
func (s *Service) GetProduct(ctx context.Context, id string) (_ *product.Product, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseGet, "GetProduct", attribute.String("product.id", id))
	defer func() { exec.End(ctx, err) }()
	exec.Field("product_id", id)

	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("product id is required")
	}

	if s.cache != nil {
		p, ok, cerr := s.cache.Get(ctx, id)
		result := "miss"
		switch {
		case cerr != nil:
			result = "error"
			exec.Logger().Warn("product_cache_get_failed", observability.F("error", cerr.Error()))
		case ok:
			result = "hit"
		}
		s.lookups.Add(1, observability.L("result", result))
		exec.Field("cache", result)
		if result == "hit" {
			return p, nil
		}
	}

	// The load is shared with concurrent callers, so it must outlive this caller's cancellation.
	v, err, shared := s.loads.Do(id, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		p, err := s.store.Repos().Products.Get(loadCtx, id)
		if err != nil {
			return nil, application.WrapRepositoryError(err)
		}
		if s.cache != nil {
			if cerr := s.cache.Set(loadCtx, p); cerr != nil {
				exec.Logger().Warn("product_cache_set_failed", observability.F("error", cerr.Error()))
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	exec.Field("shared", shared)
	return v.(*product.Product).Clone(), nil
}

// ListProducts returns purchasable products only.
func (s *Service) ListProducts(ctx context.Context, in ListInput) (_ []*product.Product, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseList, "ListProducts")
	defer func() { exec.End(ctx, err) }()

	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return nil, apperr.Validation("minPrice must not exceed maxPrice")
	}
	available := true
	out, err := s.store.Repos().Products.List(ctx, product.Filter{
		Available:  &available,
		Categories: in.Categories,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Search:     in.Search,
		Sort:       product.ParseSort(in.Sort),
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	exec.Field("results", len(out))
	return out, nil
}

func (s *Service) ListDeactivated(ctx context.Context, actor *auth.Identity) (_ []*product.Product, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseListInactive, "ListDeactivatedProducts")
	defer func() { exec.End(ctx, err) }()

	if err := auth.Require(actor, user.RoleSeller, user.RoleAdmin); err != nil {
		return nil, err
	}
	available := false
	out, err := s.store.Repos().Products.List(ctx, product.Filter{Available: &available})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	exec.Field("results", len(out))
	return out, nil
}

func (s *Service) Categories(ctx context.Context) (_ []string, err error) {
	ctx, exec := s.obs.Start(ctx, useCaseCategories, "ListCategories")
	defer func() { exec.End(ctx, err) }()

	out, err := s.store.Repos().Products.Categories(ctx)
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return out, nil
}

func (s *Service) update(ctx context.Context, id string, mutate func(*product.Product) error) (*product.Product, error) {
	var p *product.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx uow.Repositories) error {
		cur, err := tx.Products.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(cur); err != nil {
			return err
		}
		if err := tx.Products.Update(ctx, cur); err != nil {
			return err
		}
		p = cur
		return nil
	})
	if err != nil {
		return nil, application.WrapRepositoryError(err)
	}
	return p, nil
}

func (s *Service) saveImage(ctx context.Context, img *Image) (string, error) {
	if s.images == nil {
		return "", apperr.Validation("image uploads are disabled")
	}
	path, err := s.images.Save(ctx, img.Name, img.Data)
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) changed(ctx context.Context, exec *application.Execution, p *product.Product) {
	if perr := s.obs.Publish(ctx, s.publisher, product.NewChangedEvent(p)); perr != nil {
		exec.Field("event_publish_error", perr.Error())
	}
}
