package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fenilmodi00/legal-oracle-backend/models"
	"github.com/fenilmodi00/legal-oracle-backend/shared"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 6
	newProfileCredits = 10
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// ProfileRepository persists account profiles
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// PostgresProfileRepository stores profiles in the profiles table
type PostgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, password_hash, role, full_name, avatar_url, subscription_tier, api_credits, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Email, p.PasswordHash, string(p.Role), p.FullName, p.AvatarURL,
		p.SubscriptionTier, p.APICredits, p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.getProfile(ctx, "email", email)
}

func (r *PostgresProfileRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.getProfile(ctx, "id", id)
}

func (r *PostgresProfileRepository) getProfile(ctx context.Context, column string, value interface{}) (*models.Profile, error) {
	query := `
		SELECT id, email, password_hash, role, full_name, avatar_url, subscription_tier, api_credits, created_at
		FROM profiles WHERE ` + column + ` = $1
	`
	var p models.Profile
	var role string
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&p.ID, &p.Email, &p.PasswordHash, &role, &p.FullName, &p.AvatarURL,
		&p.SubscriptionTier, &p.APICredits, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	p.Role = models.ParseRole(role)
	return &p, nil
}

// Claims is the identity carried by a session token
type Claims struct {
	UserID  string
	Email   string
	Role    models.Role
	IsGuest bool
}

// User projects the claims onto a session identity
func (c *Claims) User() *models.User {
	return &models.User{ID: c.UserID, Email: c.Email, Role: c.Role, IsGuest: c.IsGuest}
}

// AuthService handles sign-up, sign-in, guest sessions and logout
type AuthService struct {
	profiles ProfileRepository
	sessions SessionStore
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates the service. A nil profiles repository allows guest sessions only.
func NewAuthService(profiles ProfileRepository, sessions SessionStore, secret string) *AuthService {
	return &AuthService{
		profiles: profiles,
		sessions: sessions,
		secret:   []byte(secret),
		tokenTTL: DefaultTokenTTL,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) accountsAvailable(operation string) error {
	if s.profiles == nil {
		return shared.NewServiceError(shared.ErrorCategoryResource, "ACCOUNTS_UNAVAILABLE",
			"account storage is not configured, use guest login", "AuthService", operation, false, nil)
	}
	return nil
}

// SignUp registers a new account and starts its session
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewValidationError("INVALID_EMAIL", "a valid email is required", "AuthService", "SignUp")
	}
	if len(req.Password) < minPasswordLength {
		return nil, shared.NewValidationError("WEAK_PASSWORD",
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), "AuthService", "SignUp")
	}
	if err := s.accountsAvailable("SignUp"); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, "HASH_FAILED", "AuthService", "SignUp", false)
	}

	profile := &models.Profile{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     string(hash),
		Role:             models.ParseRole(req.Role),
		FullName:         strings.TrimSpace(req.FullName),
		SubscriptionTier: "free",
		APICredits:       newProfileCredits,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, shared.NewServiceError(shared.ErrorCategoryValidation, "EMAIL_TAKEN",
				"an account with this email already exists", "AuthService", "SignUp", false, err).
				WithStatusCode(http.StatusConflict)
		}
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "PROFILE_CREATE_FAILED", "AuthService", "SignUp", true)
	}

	logrus.WithFields(logrus.Fields{
		"component": "AuthService",
		"user_id":   profile.ID,
		"role":      profile.Role,
	}).Info("Account created")

	return s.startSession(ctx, profile.ToUser(), profile)
}

// SignIn verifies credentials and starts a session
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, shared.NewValidationError("MISSING_CREDENTIALS", "email and password are required", "AuthService", "SignIn")
	}
	if err := s.accountsAvailable("SignIn"); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfileByEmail(ctx, email)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryDatabase, "PROFILE_LOOKUP_FAILED", "AuthService", "SignIn", true)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalidCredentials()
	}

	return s.startSession(ctx, profile.ToUser(), profile)
}

func invalidCredentials() error {
	return shared.NewServiceError(shared.ErrorCategoryAuthentication, "INVALID_CREDENTIALS",
		"invalid email or password", "AuthService", "SignIn", false, nil)
}

// GuestLogin creates a guest identity that lives only in the session store
func (s *AuthService) GuestLogin(ctx context.Context, req models.GuestLoginRequest) (*models.AuthResponse, error) {
	if strings.TrimSpace(req.Role) == "" {
		return nil, shared.NewValidationError("MISSING_ROLE", "role is required", "AuthService", "GuestLogin")
	}
	user := models.NewGuestUser(models.ParseRole(req.Role), s.now())
	return s.startSession(ctx, user, nil)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, profile *models.Profile) (*models.AuthResponse, error) {
	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryProcessing, "TOKEN_FAILED", "AuthService", "startSession", false)
	}

	if err := s.sessions.Set(ctx, user.ID, models.SessionKeyUser, user); err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "AuthService",
			"user_id":   user.ID,
			"error":     err.Error(),
		}).Warn("Failed to cache session user")
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Profile:   profile,
	}, nil
}

// Session resolves the current user. Guests are read back from the session store.
func (s *AuthService) Session(ctx context.Context, claims *Claims) (*models.User, *models.Profile, error) {
	if claims.IsGuest {
		var user models.User
		found, err := s.sessions.Get(ctx, claims.UserID, models.SessionKeyUser, &user)
		if err != nil || !found {
			return claims.User(), nil, nil
		}
		return &user, nil, nil
	}

	if s.profiles == nil {
		return claims.User(), nil, nil
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, shared.NewServiceError(shared.ErrorCategoryAuthentication, "INVALID_SUBJECT",
			"token subject is not a user id", "AuthService", "Session", false, err)
	}

	profile, err := s.profiles.GetProfileByID(ctx, id)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil, shared.NewServiceError(shared.ErrorCategoryAuthentication, "UNKNOWN_USER",
			"account no longer exists", "AuthService", "Session", false, err)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"component": "AuthService",
			"user_id":   claims.UserID,
			"error":     err.Error(),
		}).Warn("Profile lookup failed, answering from token")
		return claims.User(), nil, nil
	}
	return profile.ToUser(), profile, nil
}

// Logout removes every session key of the user
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.ClearAll(ctx, userID); err != nil {
		return shared.WrapError(err, shared.ErrorCategoryNetwork, "SESSION_CLEAR_FAILED", "AuthService", "Logout", true)
	}

	logrus.WithFields(logrus.Fields{
		"component": "AuthService",
		"user_id":   userID,
	}).Info("Session cleared")
	return nil
}

// IssueToken signs an HS256 token for user
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"guest": user.IsGuest,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expiresAt, err
}

// ValidateToken verifies the signature and expiry of a token and returns its claims
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryAuthentication, "INVALID_TOKEN",
			"invalid or expired token", "AuthService", "ValidateToken", false, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, shared.NewServiceError(shared.ErrorCategoryAuthentication, "INVALID_TOKEN",
			"invalid token", "AuthService", "ValidateToken", false, nil)
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, shared.NewServiceError(shared.ErrorCategoryAuthentication, "INVALID_TOKEN",
			"token does not contain a subject", "AuthService", "ValidateToken", false, nil)
	}
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	guest, _ := mapClaims["guest"].(bool)

	return &Claims{
		UserID:  sub,
		Email:   email,
		Role:    models.ParseRole(role),
		IsGuest: guest,
	}, nil
}
