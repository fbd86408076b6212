// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"shepherd/internal/config"
	"shepherd/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// Fiber locals populated by AuthRequired.
const (
	LocalUserID  = "userID"
	LocalRole    = "role"
	LocalIsAdmin = "isAdmin"
)

// ActorKey carries the authenticated models.Actor in the request context.
const ActorKey contextKey = "actor"

// Token parsing failures.
var (
	ErrMissingSubject = errors.New("invalid token structure - missing subject")
	ErrInvalidSubject = errors.New("invalid user ID in token")
	ErrInvalidRole    = errors.New("invalid or missing role claim")
)

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// Claims is the parsed identity carried by an access token.
type Claims struct {
	Actor   models.Actor
	IsAdmin bool
	JTI     string
}

// ParseToken validates an HMAC-signed token and extracts the actor from its
// "sub" and "role" claims. Issuer and audience are checked when configured.
func ParseToken(tokenString string, c *config.Config) (*Claims, error) {
	var opts []jwt.ParserOption
	if c.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(c.JWTIssuer))
	}
	if c.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(c.JWTAudience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(c.JWTSecret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}

	// Extract user ID from "sub" claim (subject claim per RFC 7519)
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrMissingSubject
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidSubject
	}

	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	parsed := &Claims{Actor: models.Actor{ID: uint(userID), Role: role}}
	parsed.IsAdmin, _ = claims["admin"].(bool)
	parsed.JTI, _ = claims["jti"].(string)
	return parsed, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Split(c.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization header required"))
	}

	tokenString, ok := BearerToken(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid authorization header format"))
	}

	claims, err := ParseToken(tokenString, cfg)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	SetActor(c, claims)
	return c.Next()
}

// SetActor stores the parsed identity in Fiber locals and the user context.
func SetActor(c *fiber.Ctx, claims *Claims) {
	c.Locals(LocalUserID, claims.Actor.ID)
	c.Locals(LocalRole, claims.Actor.Role)
	c.Locals(LocalIsAdmin, claims.IsAdmin)

	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, claims.Actor.ID)
	ctx = context.WithValue(ctx, ActorKey, claims.Actor)
	c.SetUserContext(ctx)
}

// ActorFromCtx returns the authenticated actor set by AuthRequired.
func ActorFromCtx(c *fiber.Ctx) (models.Actor, bool) {
	id, ok := c.Locals(LocalUserID).(uint)
	if !ok || id == 0 {
		return models.Actor{}, false
	}
	role, _ := c.Locals(LocalRole).(models.Role)
	return models.Actor{ID: id, Role: role}, true
}

// ActorFromContext returns the actor stored in a request context.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(models.Actor)
	return actor, ok
}
