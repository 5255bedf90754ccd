package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"grand-hotel-backend/services"
	"grand-hotel-backend/utils"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error onto the response envelope. The underlying cause of
// a 500 is echoed in "error" unless exposeErrors is off.
func respondError(c *gin.Context, err error, exposeErrors bool) {
	status := statusFor(err)

	message := "Erreur interne du serveur"
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	detail := ""
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if exposeErrors {
			detail = err.Error()
			if svcErr != nil && svcErr.Err != nil {
				detail = svcErr.Err.Error()
			}
		}
	}
	utils.JSONError(c, status, message, detail)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
