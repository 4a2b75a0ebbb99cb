package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"quizbox-service/internal/domain"
)

const issuer = "quizbox"

// ErrRateLimited is returned when login attempts exceed the configured rate.
var ErrRateLimited = errors.New("too many login attempts")

// Config configures the operator credential service.
type Config struct {
	Username     string
	PasswordHash string // bcrypt
	Secret       string
	TokenTTL     time.Duration
	// LoginRPS caps login attempts per second across all clients; zero disables the cap.
	LoginRPS float64
}

// Service authenticates the operator and issues bearer tokens.
type Service struct {
	username string
	hash     []byte
	hmac     []byte
	ttl      time.Duration
	limiter  *rate.Limiter
	now      func() time.Time
}

type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret not configured")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.LoginRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.LoginRPS), int(cfg.LoginRPS)+1)
	}
	return &Service{
		username: cfg.Username,
		hash:     []byte(cfg.PasswordHash),
		hmac:     []byte(cfg.Secret),
		ttl:      ttl,
		limiter:  limiter,
		now:      time.Now,
	}, nil
}

// Login checks operator credentials and returns a signed token.
func (s *Service) Login(username, password string) (string, error) {
	if !s.limiter.Allow() {
		return "", ErrRateLimited
	}
	if s.username == "" || len(s.hash) == 0 {
		return "", domain.ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !userOK || passErr != nil {
		return "", domain.ErrInvalidCredentials
	}
	return s.Issue(username)
}

// Issue signs a token for sub.
func (s *Service) Issue(sub string) (string, error) {
	now := s.now()
	claims := &Claims{
		Sub: sub,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

// Parse validates a token and returns its claims.
func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

type ctxKey struct{}

// Operator returns the authenticated operator name stored by Middleware.
func Operator(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(ctxKey{}).(string)
	return sub, ok
}

// Middleware rejects requests without a valid bearer token.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			writeUnauthorized(w, "missing bearer token")
			return
		}
		claims, err := s.Parse(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			writeUnauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims.Sub)))
	})
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// HashPassword returns a bcrypt hash suitable for Config.PasswordHash.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}
