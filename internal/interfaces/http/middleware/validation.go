package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/inventory"
	"github.com/shopledger/backend/internal/domain/partner"
	"github.com/shopledger/backend/internal/domain/trade"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the gin binding validator: error details carry
// JSON field names, and the ledger enum tags delegate to the domain types
// so the accepted values live in exactly one place. Call once at startup,
// before the router is built.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	for tag, fn := range enumValidators() {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// enumValidators maps binding tags to the domain enums they accept.
func enumValidators() map[string]validator.Func {
	return map[string]validator.Func{
		"payment_type": func(fl validator.FieldLevel) bool {
			return trade.PaymentType(fl.Field().String()).IsValid()
		},
		"payment_method": func(fl validator.FieldLevel) bool {
			return trade.PaymentMethod(fl.Field().String()).IsValid()
		},
		"return_type": func(fl validator.FieldLevel) bool {
			return trade.ReturnType(fl.Field().String()).IsValid()
		},
		"movement_type": func(fl validator.FieldLevel) bool {
			return inventory.MovementType(fl.Field().String()).IsValid()
		},
		"entity_kind": func(fl validator.FieldLevel) bool {
			return partner.EntityKind(fl.Field().String()).IsValid()
		},
		"price_tier": func(fl validator.FieldLevel) bool {
			return catalog.PriceTier(fl.Field().String()).IsValid()
		},
		"discount_type": func(fl validator.FieldLevel) bool {
			_, err := catalog.ParseDiscountType(fl.Field().String())
			return err == nil
		},
	}
}

// FormatValidationErrors formats validation errors into a standard response.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError writes a 400 with field-level details.
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "len":
		return "Must be exactly " + e.Param() + " characters"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "lt":
		return "Must be less than " + e.Param()
	case "payment_type":
		return "Must be one of: CASH, CREDIT"
	case "payment_method":
		return "Must be one of: CASH, CARD, BANK_TRANSFER, MOBILE_MONEY, OTHER"
	case "return_type":
		return "Must be one of: CASH, CREDIT, EXCHANGE"
	case "movement_type":
		return "Must be one of: INCREASE, DECREASE"
	case "entity_kind":
		return "Must be one of: customer, supplier"
	case "price_tier":
		return "Must be one of: default, retail, wholesale, promo"
	case "discount_type":
		return "Must be one of: percent, amount"
	default:
		return "Invalid value"
	}
}
