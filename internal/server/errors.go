package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	adjustmentdomain "github.com/openunited/platform/internal/adjustment/domain"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
	feedomain "github.com/openunited/platform/internal/fee/domain"
	orderdomain "github.com/openunited/platform/internal/order/domain"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
	taxdomain "github.com/openunited/platform/internal/tax/domain"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrConflict       = errors.New("conflict")
)

// ErrorHandlingMiddleware maps domain errors pushed via AbortWithError onto
// JSON error responses after the handler chain runs.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, orgdomain.ErrNotFound),
		errors.Is(err, cartdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, ledgerdomain.ErrNotFound),
		errors.Is(err, workitemdomain.ErrNotFound),
		errors.Is(err, adjustmentdomain.ErrNotFound):
		return true
	}
	return false
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orgdomain.ErrInvalidName),
		errors.Is(err, orgdomain.ErrInvalidCountry),
		errors.Is(err, orgdomain.ErrInvalidAmount),
		errors.Is(err, orgdomain.ErrInvalidOrganisation),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, ledgerdomain.ErrInvalidOrganisation),
		errors.Is(err, ledgerdomain.ErrInvalidProduct),
		errors.Is(err, workitemdomain.ErrInvalidProduct),
		errors.Is(err, workitemdomain.ErrInvalidTitle),
		errors.Is(err, workitemdomain.ErrInvalidReward),
		errors.Is(err, workitemdomain.ErrInvalidBid),
		errors.Is(err, cartdomain.ErrInvalidCart),
		errors.Is(err, cartdomain.ErrInvalidItemKind),
		errors.Is(err, cartdomain.ErrInvalidAmount),
		errors.Is(err, cartdomain.ErrMissingBounty),
		errors.Is(err, cartdomain.ErrFundingMismatch),
		errors.Is(err, feedomain.ErrInvalidPercentage),
		errors.Is(err, feedomain.ErrInvalidAppliesFrom),
		errors.Is(err, taxdomain.ErrInvalidRate),
		errors.Is(err, orderdomain.ErrEmptyCart),
		errors.Is(err, adjustmentdomain.ErrInvalidDelta):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, cartdomain.ErrCartNotOpen),
		errors.Is(err, workitemdomain.ErrBidNotPending),
		errors.Is(err, adjustmentdomain.ErrBidNotPending),
		errors.Is(err, adjustmentdomain.ErrParentNotSettled):
		return true
	}
	return false
}

func parseID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}
