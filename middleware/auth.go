package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"grand-hotel-backend/models"
	"grand-hotel-backend/services"
	"grand-hotel-backend/utils"

	"github.com/gin-gonic/gin"
)

const currentUserKey = "currentUser"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect requires a valid "Authorization: Bearer <token>" header and stores the user in the context.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, _ := strings.Cut(strings.TrimSpace(c.GetHeader("Authorization")), " ")
		token = strings.TrimSpace(token)
		if !strings.EqualFold(scheme, "Bearer") || token == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, "Non authentifié, token manquant")
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			var svcErr *services.Error
			msg := "Token invalide ou expiré"
			if errors.As(err, &svcErr) {
				msg = svcErr.Message
			}
			switch {
			case errors.Is(err, services.ErrForbidden):
				utils.AbortJSONError(c, http.StatusForbidden, msg)
			case errors.Is(err, services.ErrPersistence):
				utils.AbortJSONError(c, http.StatusInternalServerError, msg)
			default:
				utils.AbortJSONError(c, http.StatusUnauthorized, msg)
			}
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RestrictTo must run after Protect.
func RestrictTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.AbortJSONError(c, http.StatusUnauthorized, "Non authentifié")
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		utils.AbortJSONError(c, http.StatusForbidden, "Accès refusé: permissions insuffisantes")
	}
}

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
