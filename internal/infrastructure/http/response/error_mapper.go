package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

type errorMappingEntry struct {
	err     error
	mapping ErrorMapping
}

// Checked in order: a checkout transport error also wraps the service
// error that caused it, and the outer one must win.
var errorMappings = []errorMappingEntry{
	{domainErrors.ErrSessionRequired, ErrorMapping{
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "X-Session-ID header is required",
	}},
	{domainErrors.ErrInvalidRequest, ErrorMapping{
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Invalid request",
	}},
	{domainErrors.ErrCheckoutInProgress, ErrorMapping{
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Checkout already in progress",
	}},
	{domainErrors.ErrCheckoutTransport, ErrorMapping{
		HTTPStatus: http.StatusServiceUnavailable,
		Status:     StatusServiceUnavailable,
		Message:    "Checkout failed unexpectedly",
	}},
	{domainErrors.ErrServiceUnavailable, ErrorMapping{
		HTTPStatus: http.StatusServiceUnavailable,
		Status:     StatusServiceUnavailable,
		Message:    "Purchase service unavailable",
	}},
	{domainErrors.ErrUnauthorized, ErrorMapping{
		HTTPStatus: http.StatusUnauthorized,
		Status:     StatusUnauthorized,
		Message:    "Not authorized",
	}},
	{domainErrors.ErrItemNotFound, ErrorMapping{
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Item not found",
	}},
	{domainErrors.ErrOutOfStock, ErrorMapping{
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Item is out of stock",
	}},
	{domainErrors.ErrUpstream, ErrorMapping{
		HTTPStatus: http.StatusBadGateway,
		Status:     StatusError,
		Message:    "Storefront API request failed",
	}},
	{domainErrors.ErrPersistence, ErrorMapping{
		HTTPStatus: http.StatusInternalServerError,
		Status:     StatusInternalError,
		Message:    "Cart could not be saved",
	}},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for _, entry := range errorMappings {
		if errors.Is(err, entry.err) {
			return entry.mapping.HTTPStatus, Error(entry.mapping.Status, entry.mapping.Message, err.Error())
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error", err.Error())
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
