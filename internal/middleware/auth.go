package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"socialnet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tokenIssuer   = "socialnet-api"
	tokenAudience = "socialnet-client"
	tokenTTL      = 7 * 24 * time.Hour
)

var (
	errInvalidToken = errors.New("invalid or expired token")
	errRevokedToken = errors.New("token has been revoked")
)

// TokenClaims is the subset of JWT claims the API relies on.
type TokenClaims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// TokenAuth issues and verifies HS256 bearer tokens. Revoked token IDs are kept
// in Redis under blacklist:<jti> until the token would have expired.
type TokenAuth struct {
	secret []byte
	redis  *redis.Client
}

// NewTokenAuth returns a TokenAuth. rdb may be nil, in which case revocation
// is not checked.
func NewTokenAuth(secret string, rdb *redis.Client) *TokenAuth {
	return &TokenAuth{secret: []byte(secret), redis: rdb}
}

// Issue signs a token for the given account.
func (a *TokenAuth) Issue(userID uint, username string) (string, error) {
	if len(a.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse validates signature, issuer, audience and expiry.
func (a *TokenAuth) Parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, errInvalidToken
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, errInvalidToken
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errInvalidToken
	}
	jti, _ := claims["jti"].(string)

	return &TokenClaims{UserID: uint(userID), JTI: jti, ExpiresAt: exp.Time}, nil
}

// Revoke blacklists the token ID for the rest of its lifetime.
func (a *TokenAuth) Revoke(ctx context.Context, claims *TokenClaims) error {
	if a.redis == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := a.redis.Set(ctx, "blacklist:"+claims.JTI, "1", ttl).Err(); err != nil {
		RedisErrors.WithLabelValues("blacklist_set").Inc()
		return err
	}
	return nil
}

func (a *TokenAuth) isRevoked(ctx context.Context, jti string) bool {
	if a.redis == nil || jti == "" {
		return false
	}
	n, err := a.redis.Exists(ctx, "blacklist:"+jti).Result()
	if err != nil {
		// Fail open; the signature check already passed.
		RedisErrors.WithLabelValues("blacklist_check").Inc()
		return false
	}
	return n > 0
}

func (a *TokenAuth) authenticate(c *fiber.Ctx) (*TokenClaims, error) {
	tokenString := bearerToken(c)
	if tokenString == "" && strings.HasPrefix(c.Path(), "/api/ws") {
		// Browsers cannot set headers on websocket upgrades.
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return nil, nil
	}

	claims, err := a.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if a.isRevoked(c.Context(), claims.JTI) {
		return nil, errRevokedToken
	}
	return claims, nil
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setCaller(c *fiber.Ctx, claims *TokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("tokenClaims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// Required rejects requests without a valid, unrevoked bearer token.
func (a *TokenAuth) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := a.authenticate(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(capitalize(err.Error())))
		}
		if claims == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication credentials were not provided"))
		}
		setCaller(c, claims)
		return c.Next()
	}
}

// Optional identifies the caller when a valid token is present and otherwise
// lets the request through anonymously.
func (a *TokenAuth) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, err := a.authenticate(c); err == nil && claims != nil {
			setCaller(c, claims)
		}
		return c.Next()
	}
}

// CallerID returns the authenticated account ID, if any.
func CallerID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// CallerClaims returns the verified claims of the current request, if any.
func CallerClaims(c *fiber.Ctx) (*TokenClaims, bool) {
	claims, ok := c.Locals("tokenClaims").(*TokenClaims)
	return claims, ok
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
