package service

import (
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"vigil/core/models"
	"vigil/core/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors mapped to HTTP codes by the handlers.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountLocked      = errors.New("account locked")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// TokenPair is issued on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type tokenClaims struct {
	TokenType string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// AuthService issues and verifies session credentials.
//
// Tokens are stateless HS256 JWTs; logout adds the token id to a revocation
// set that holds only currently-revoked ids until their natural expiry.
type AuthService struct {
	users  repository.UserStore
	threat *ThreatService

	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry

	now func() time.Time
}

// NewAuthService creates an auth service signing tokens with secret.
func NewAuthService(users repository.UserStore, threat *ThreatService, secret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		threat:     threat,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    make(map[string]time.Time),
		now:        time.Now,
	}
}

// Register creates a new user account. Returns ErrEmailTaken if the email
// is already registered.
func (a *AuthService) Register(email, password, fullName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	log.Printf("Registered user: %s", email)
	return user, nil
}

// Login verifies credentials and issues a token pair. The lockout check
// runs before any password comparison; a locked account fails with
// ErrAccountLocked even when given the correct password.
func (a *AuthService) Login(email, password string) (*TokenPair, error) {
	user, err := a.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Locked(a.now().UTC()) {
		return nil, ErrAccountLocked
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if err := a.threat.RecordFailedLogin(user.ID); err != nil {
			log.Printf("Failed to record failed login for user %d: %v", user.ID, err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := a.threat.RecordSuccessfulLogin(user.ID); err != nil {
		log.Printf("Failed to reset failed logins for user %d: %v", user.ID, err)
	}

	return a.issuePair(user.ID)
}

// Refresh rotates a refresh token into a new token pair.
func (a *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := a.parse(refreshToken, "refresh")
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// Old refresh token is dead once rotated.
	a.revoke(claims.ID, claims.ExpiresAt.Time)
	return a.issuePair(userID)
}

// Logout revokes the presented access token until its natural expiry.
func (a *AuthService) Logout(accessToken string) error {
	claims, err := a.parse(accessToken, "access")
	if err != nil {
		return err
	}
	a.revoke(claims.ID, claims.ExpiresAt.Time)
	return nil
}

// Verify checks an access token and returns the subject user id.
func (a *AuthService) Verify(accessToken string) (int64, error) {
	claims, err := a.parse(accessToken, "access")
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// CurrentUser resolves an access token to its user record.
func (a *AuthService) CurrentUser(accessToken string) (*models.User, error) {
	userID, err := a.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := a.users.GetByID(userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return user, err
}

func (a *AuthService) issuePair(userID int64) (*TokenPair, error) {
	access, err := a.sign(userID, "access", a.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := a.sign(userID, "refresh", a.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		TokenType:    "bearer",
		RefreshToken: refresh,
		ExpiresIn:    int(a.accessTTL.Seconds()),
	}, nil
}

func (a *AuthService) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := a.now().UTC()
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *AuthService) parse(tokenString, wantType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return a.now() }))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if a.isRevoked(claims.ID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *AuthService) revoke(jti string, expiry time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.revoked[jti] = expiry
	// Drop identifiers whose tokens have expired on their own.
	now := a.now().UTC()
	for id, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, id)
		}
	}
}

func (a *AuthService) isRevoked(jti string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.revoked[jti]
	return ok
}
