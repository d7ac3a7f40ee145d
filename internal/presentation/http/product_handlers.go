package httppresentation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application/catalog"
	appinventory "github.com/Zhima-Mochi/minimarket/internal/application/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	dominv "github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/domain/product"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) handleListProducts(c *gin.Context) {
	in := catalog.ListInput{
		Sort:       c.Query("sort"),
		Search:     c.Query("q"),
		Categories: splitList(c.QueryArray("categories")),
	}
	var err error
	if in.MinPrice, err = optionalDecimal(c.Query("minPrice"), "minPrice"); err != nil {
		writeError(c, err)
		return
	}
	if in.MaxPrice, err = optionalDecimal(c.Query("maxPrice"), "maxPrice"); err != nil {
		writeError(c, err)
		return
	}

	ps, err := h.svc.Catalog.ListProducts(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductViews(ps))
}

func (h *Handler) handleGetProduct(c *gin.Context) {
	p, err := h.svc.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}

func (h *Handler) handleCategories(c *gin.Context) {
	cats, err := h.svc.Catalog.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]gin.H, 0, len(cats))
	for _, cat := range cats {
		out = append(out, gin.H{"category": cat})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) handleListDeactivated(c *gin.Context) {
	ps, err := h.svc.Catalog.ListDeactivated(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductViews(ps))
}

type productForm struct {
	ID          string `form:"id"`
	Name        string `form:"name" binding:"required"`
	Category    string `form:"category" binding:"required"`
	Description string `form:"description"`
	Price       string `form:"price" binding:"required"`
	Stock       int    `form:"stock" binding:"gte=0"`
}

func (f productForm) details() (product.Details, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return product.Details{}, apperr.Validation("price must be a number")
	}
	return product.Details{
		Name:        strings.TrimSpace(f.Name),
		Category:    strings.TrimSpace(f.Category),
		Description: strings.TrimSpace(f.Description),
		Price:       price,
	}, nil
}

func (h *Handler) handleCreateProduct(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := form.details()
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := h.readImage(c)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.svc.Catalog.CreateProduct(c.Request.Context(), catalog.CreateProductInput{
		Actor:   identityFrom(c),
		ID:      strings.TrimSpace(form.ID),
		Details: details,
		Stock:   form.Stock,
		Image:   img,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductView(p))
}

func (h *Handler) handleEditProduct(c *gin.Context) {
	var form productForm
	if err := c.ShouldBind(&form); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := form.details()
	if err != nil {
		writeError(c, err)
		return
	}
	img, err := h.readImage(c)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := h.svc.Catalog.EditProduct(c.Request.Context(), catalog.EditProductInput{
		Actor:   identityFrom(c),
		ID:      c.Param("id"),
		Details: details,
		Image:   img,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}

func (h *Handler) handleDeactivate(c *gin.Context) {
	p, err := h.svc.Catalog.Deactivate(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}

func (h *Handler) handleReactivate(c *gin.Context) {
	p, err := h.svc.Catalog.Reactivate(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}

const (
	stockAdd    = dominv.AdjustmentAdd
	stockRemove = dominv.AdjustmentRemove
	stockSet    = dominv.AdjustmentSet
)

type stockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handler) handleStock(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req stockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindError(c, err)
			return
		}

		p, err := h.svc.Stock.Execute(c.Request.Context(), appinventory.AdjustStockInput{
			Actor:     identityFrom(c),
			ProductID: c.Param("id"),
			Kind:      kind,
			Quantity:  *req.Quantity,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toProductView(p))
	}
}

// readImage returns the optional "image" upload, capped at MaxUploadBytes.
func (h *Handler) readImage(c *gin.Context) (*catalog.Image, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperr.Validation("image upload could not be read")
	}
	if fh.Size > h.opts.MaxUploadBytes {
		return nil, apperr.Validation(fmt.Sprintf("image exceeds %d bytes", h.opts.MaxUploadBytes))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &catalog.Image{Name: fh.Filename, Data: data}, nil
}

// splitList flattens repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalDecimal(raw, name string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validation(name + " must be a number")
	}
	return &d, nil
}
