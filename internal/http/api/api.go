package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iqamah-app/iqamah/internal/provider"
	"github.com/iqamah-app/iqamah/internal/service"
)

type Error struct {
	Code    int
	Message string
}

type HandlerFunc func(ctx *gin.Context) (any, *Error)

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		if apiErr != nil {
			ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
			return
		}

		ctx.JSON(http.StatusOK, result)
	}
}

// FromError maps service and provider failures onto HTTP status codes.
// Input validation answers 400, a missing resource 404, upstream trouble
// 502; anything unclassified is a 500.
func FromError(err error) *Error {
	if errors.Is(err, service.ErrInvalidDate) {
		return &Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	var perr *provider.Error
	if errors.As(err, &perr) {
		switch perr.Kind {
		case provider.KindNotFound:
			return &Error{Code: http.StatusNotFound, Message: err.Error()}
		case provider.KindInvalidConfig:
			return &Error{Code: http.StatusBadRequest, Message: err.Error()}
		case provider.KindNetwork, provider.KindServer, provider.KindParse:
			return &Error{Code: http.StatusBadGateway, Message: err.Error()}
		case provider.KindOther:
			return &Error{Code: http.StatusServiceUnavailable, Message: err.Error()}
		}
	}

	return &Error{Code: http.StatusInternalServerError, Message: err.Error()}
}
