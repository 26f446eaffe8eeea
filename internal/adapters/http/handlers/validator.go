// Package handlers contains the HTTP handlers of the REST API.
//
// A handler is an adapter: it binds the HTTP request, builds a command or
// query DTO, calls the use case and renders the result. All business rules
// live behind the use case interfaces.
package handlers

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/avelora/coinvault/internal/adapters/http/common"
)

// ============================================
// Custom Validator Setup
// ============================================

var setupOnce sync.Once

// SetupValidator registers the custom validators with Gin's binding engine.
func SetupValidator() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			// Report field names from json tags, not Go identifiers.
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})

			_ = v.RegisterValidation("asset_amount", validateAssetAmount)
			_ = v.RegisterValidation("asset_code", validateAssetCode)
		}
	})
}

// ============================================
// Custom Validators
// ============================================

// Ledger amounts are positive decimals with at most two fractional digits.
var amountPattern = regexp.MustCompile(`^\d{1,18}(\.\d{1,2})?$`)

func validateAssetAmount(fl validator.FieldLevel) bool {
	amount := fl.Field().String()
	if !amountPattern.MatchString(amount) {
		return false
	}
	// All-zero amounts pass the pattern but are never a valid movement.
	return strings.Trim(amount, "0.") != ""
}

// validateAssetCode accepts catalog codes: uppercase letters and digits.
func validateAssetCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}

// ============================================
// Validation Error Handling
// ============================================

// HandleValidationErrors renders binding failures as a 400 response.
func HandleValidationErrors(c *gin.Context, err error) {
	var fieldErrors []common.FieldError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrors {
			fieldErrors = append(fieldErrors, common.FieldError{
				Field:   fieldErr.Field(),
				Message: getValidationMessage(fieldErr),
				Code:    fieldErr.Tag(),
			})
		}
	}

	if len(fieldErrors) == 0 {
		common.BadRequestResponse(c, "Invalid request body: "+err.Error())
		return
	}

	common.ValidationErrorResponse(c, fieldErrors)
}

// getValidationMessage turns a validator tag into a readable message.
func getValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Invalid UUID format"
	case "min":
		return "Value is too short (minimum: " + fe.Param() + ")"
	case "max":
		return "Value is too long (maximum: " + fe.Param() + ")"
	case "asset_amount":
		return "Invalid amount (use a positive decimal like '100.50', at most 2 fractional digits)"
	case "asset_code":
		return "Invalid asset code (uppercase letters, digits and underscores)"
	default:
		return "Invalid value"
	}
}

// ============================================
// Request Parsing Helpers
// ============================================

// BindJSON binds the JSON body. Returns false when the response was already
// written.
func BindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindQuery binds query string parameters.
func BindQuery[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// BindURI binds URI parameters.
func BindURI[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindUri(req); err != nil {
		HandleValidationErrors(c, err)
		return false
	}
	return true
}

// ============================================
// Pagination Helper
// ============================================

// PageParams are the raw limit/offset query values. Range rules (defaults,
// caps, non-negativity) are enforced by the query use case so the HTTP and
// any future transport behave identically; the handler only parses ints.
type PageParams struct {
	Limit  int
	Offset int
}

// ParsePage extracts limit/offset from the query string. A non-numeric value
// is reported as a validation failure and false is returned.
func ParsePage(c *gin.Context) (PageParams, bool) {
	var params PageParams

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.ValidationErrorResponse(c, []common.FieldError{
				{Field: "limit", Message: "must be an integer", Code: "integer"},
			})
			return params, false
		}
		params.Limit = n
	}

	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.ValidationErrorResponse(c, []common.FieldError{
				{Field: "offset", Message: "must be an integer", Code: "integer"},
			})
			return params, false
		}
		params.Offset = n
	}

	return params, true
}
