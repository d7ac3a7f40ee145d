package httppresentation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minimarket/internal/domain/apperr"
	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type shortfallView struct {
	ProductID         string `json:"productId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	AvailableStock    int    `json:"availableStock"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a use case error onto its status code. Server-side failures are logged
// and answered with a generic message.
func writeError(c *gin.Context, err error) {
	var short *inventory.InsufficientStockError
	if errors.As(err, &short) {
		products := make([]shortfallView, 0, len(short.Shortfalls))
		for _, s := range short.Shortfalls {
			products = append(products, shortfallView{
				ProductID:         s.ProductID,
				RequestedQuantity: s.Requested,
				AvailableStock:    s.Available,
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock", "products": products})
		return
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		logctx.FromOr(c.Request.Context(), observability.NopLogger()).Error("http_request_failed",
			observability.F("route", routeOf(c)),
			observability.F("error", err.Error()),
		)
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// writeBindError reports request decoding failures, naming each invalid field.
func writeBindError(c *gin.Context, err error) {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed request body"})
		return
	}
	fields := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		fields[vErr.Field()] = describe(vErr)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid fields", "fields": fields})
}

func describe(vErr validator.FieldError) string {
	switch vErr.Tag() {
	case "required":
		return "value missing"
	case "min", "gte":
		return "must be at least " + vErr.Param()
	case "gt":
		return "must be greater than " + vErr.Param()
	case "max", "lte":
		return "must be at most " + vErr.Param()
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + vErr.Param()
	default:
		return fmt.Sprintf("failed %q", vErr.Tag())
	}
}

var registerFieldNames sync.Once

// useWireFieldNames makes validation errors report json/form names instead of Go field names.
func useWireFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}
