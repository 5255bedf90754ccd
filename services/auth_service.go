package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"grand-hotel-backend/models"
	"grand-hotel-backend/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type RegisterInput struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// ProfileInput is a partial profile update; nil fields are kept. Role and Status are only
// decoded so that attempts to change them can be refused.
type ProfileInput struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Role    *string `json:"role"`
	Status  *string `json:"status"`
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

type AuthService struct {
	Users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users UserStore, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{Users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Register always creates a client account; admins are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" || in.Password == "" {
		return nil, "", validationError("Nom, email et mot de passe requis")
	}
	if len(in.Password) < minPasswordLength {
		return nil, "", validationError(fmt.Sprintf("Le mot de passe doit contenir au moins %d caractères", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", persistenceError("Erreur lors de l'inscription", err)
	}

	user := &models.User{
		Name:     name,
		Surname:  strings.TrimSpace(in.Surname),
		Email:    email,
		Password: string(hash),
		Phone:    strings.TrimSpace(in.Phone),
		Role:     models.RoleClient,
		Status:   models.UserStatusActive,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, "", conflictError("Un utilisateur avec cet email existe déjà")
		}
		return nil, "", persistenceError("Erreur lors de l'inscription", err)
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", persistenceError("Erreur lors de l'inscription", err)
	}
	log.Printf("✅ User registered: %s", user.Email)
	return user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, "", validationError("Email et mot de passe requis")
	}

	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, "", newError(ErrUnauthorized, "Email ou mot de passe invalide", nil)
	}
	if err != nil {
		return nil, "", persistenceError("Erreur lors de la connexion", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", newError(ErrUnauthorized, "Email ou mot de passe invalide", nil)
	}
	if !user.IsActive() {
		return nil, "", newError(ErrForbidden, "Votre compte est désactivé", nil)
	}

	now := s.now()
	if err := s.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		log.Printf("⚠️ Failed to record last login for user %d: %v", user.ID, err)
	} else {
		user.LastLogin = &now
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, "", persistenceError("Erreur lors de la connexion", err)
	}
	return user, token, nil
}

func (s *AuthService) Profile(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, notFoundError("Utilisateur non trouvé")
	}
	if err != nil {
		return nil, persistenceError("Erreur lors de la récupération du profil", err)
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	if in.Role != nil || in.Status != nil {
		return nil, newError(ErrForbidden, "Modification du rôle ou du statut non autorisée", nil)
	}

	user, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, validationError("Le nom est requis")
		}
		user.Name = name
	}
	if in.Surname != nil {
		user.Surname = strings.TrimSpace(*in.Surname)
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, validationError("Email invalide")
		}
		if email != user.Email {
			existing, err := s.Users.FindByEmail(ctx, email)
			if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
				return nil, persistenceError("Erreur lors de la mise à jour du profil", err)
			}
			if existing != nil && existing.ID != user.ID {
				return nil, conflictError("Cet email est déjà utilisé")
			}
		}
		user.Email = email
	}

	if err := s.Users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, conflictError("Cet email est déjà utilisé")
		}
		return nil, persistenceError("Erreur lors de la mise à jour du profil", err)
	}
	log.Printf("✅ Profile updated for user %d", user.ID)
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, id uint, current, next string) error {
	if current == "" || next == "" {
		return validationError("Mot de passe actuel et nouveau mot de passe requis")
	}
	if len(next) < minPasswordLength {
		return validationError(fmt.Sprintf("Le mot de passe doit contenir au moins %d caractères", minPasswordLength))
	}
	if current == next {
		return validationError("Le nouveau mot de passe doit être différent de l'ancien")
	}

	user, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return validationError("Le mot de passe actuel est incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return persistenceError("Erreur lors du changement de mot de passe", err)
	}
	if err := s.Users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return persistenceError("Erreur lors du changement de mot de passe", err)
	}
	return nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Role: user.Role,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate verifies a bearer token and loads its (active) user.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, newError(ErrUnauthorized, "Token invalide ou expiré", err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, newError(ErrUnauthorized, "Token invalide ou expiré", err)
	}

	user, err := s.Users.FindByID(ctx, uint(id))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return nil, newError(ErrUnauthorized, "Utilisateur introuvable", nil)
	}
	if err != nil {
		return nil, persistenceError("Erreur lors de la vérification du token", err)
	}
	if !user.IsActive() {
		return nil, newError(ErrForbidden, "Votre compte est désactivé", nil)
	}
	return user, nil
}
