package controllers

import (
	"net/http"
	"strings"

	"grand-hotel-backend/middleware"
	"grand-hotel-backend/models"
	"grand-hotel-backend/services"
	"grand-hotel-backend/utils"

	"github.com/gin-gonic/gin"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type AuthController struct {
	AuthSvc      *services.AuthService
	ExposeErrors bool
}

func NewAuthController(svc *services.AuthService, exposeErrors bool) *AuthController {
	return &AuthController{AuthSvc: svc, ExposeErrors: exposeErrors}
}

func userResponse(u *models.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"name":        u.Name,
		"surname":     u.Surname,
		"email":       u.Email,
		"phone":       u.Phone,
		"role":        u.Role,
		"status":      u.Status,
		"lastLogin":   u.LastLogin,
		"memberSince": u.CreatedAt,
	}
}

func (ctl *AuthController) Register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Données invalides", err.Error())
		return
	}

	user, token, err := ctl.AuthSvc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, "Inscription réussie", gin.H{
		"user":  userResponse(user),
		"token": token,
	})
}

func (ctl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Données invalides", err.Error())
		return
	}

	user, token, err := ctl.AuthSvc.Login(c.Request.Context(), strings.TrimSpace(payload.Email), payload.Password)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Connexion réussie", gin.H{
		"user":  userResponse(user),
		"token": token,
	})
}

func (ctl *AuthController) Profile(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		utils.JSONError(c, http.StatusUnauthorized, "Non authentifié", "")
		return
	}

	user, err := ctl.AuthSvc.Profile(c.Request.Context(), current.ID)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "", gin.H{"user": userResponse(user)})
}

func (ctl *AuthController) UpdateProfile(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		utils.JSONError(c, http.StatusUnauthorized, "Non authentifié", "")
		return
	}

	var in services.ProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Données invalides", err.Error())
		return
	}

	user, err := ctl.AuthSvc.UpdateProfile(c.Request.Context(), current.ID, in)
	if err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Profil mis à jour avec succès", gin.H{"user": userResponse(user)})
}

func (ctl *AuthController) ChangePassword(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		utils.JSONError(c, http.StatusUnauthorized, "Non authentifié", "")
		return
	}

	var payload changePasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Données invalides", err.Error())
		return
	}

	if err := ctl.AuthSvc.ChangePassword(c.Request.Context(), current.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respondError(c, err, ctl.ExposeErrors)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Mot de passe modifié avec succès", nil)
}

// Verify only runs behind Protect, so reaching it means the token is valid.
func (ctl *AuthController) Verify(c *gin.Context) {
	current := middleware.CurrentUser(c)
	if current == nil {
		utils.JSONError(c, http.StatusUnauthorized, "Non authentifié", "")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, "Token valide", gin.H{"user": userResponse(current)})
}
