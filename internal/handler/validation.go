package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"servicehub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the marketplace enum tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("request_type", func(fl validator.FieldLevel) bool {
			return domain.RequestType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("booking_status", func(fl validator.FieldLevel) bool {
			return domain.BookingStatus(fl.Field().String()).Valid()
		})
	})
}

// bindOptionalJSON binds a JSON body that may be absent. Chunked bodies report no length, so
// emptiness is detected by the decoder hitting EOF.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// bindMessage turns a binding failure into a client-facing sentence.
func bindMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			parts = append(parts, field+" is required")
		case "request_type":
			parts = append(parts, field+" must be fixed or bidding")
		case "booking_status":
			parts = append(parts, field+" is not a booking status")
		case "min", "gte", "gt":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			parts = append(parts, field+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}
