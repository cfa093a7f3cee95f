package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"quiz-server/utils"
)

const (
	// PlayerKey is the context key holding the player id of a request.
	PlayerKey = "player_id"
	// RolesKey is the context key holding the player's roles.
	RolesKey = "player_roles"
	// LocalPlayer is the player of every request when auth is disabled.
	LocalPlayer = "local"
	// TokenCookie carries the JWT for browser screens that cannot send headers.
	TokenCookie = "quiz_token"
)

// claims struct to hold JWT custom claims
type claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the JWT and sets the player from its subject. The
// token comes from the bearer Authorization header, or from TokenCookie when
// the request has no such header.
func AuthMiddleware(jwtSigningKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if !(len(parts) == 2 && strings.ToLower(parts[0]) == "bearer") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
				return
			}
			tokenString = parts[1]
		} else if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
			tokenString = cookie
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSigningKey), nil
		}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
		if err != nil {
			log.Printf("JWT parsing error: %v", err)
			switch {
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token signature"})
			case errors.Is(err, jwt.ErrTokenExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			case errors.Is(err, jwt.ErrTokenNotValidYet):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token not active yet"})
			case errors.Is(err, jwt.ErrTokenInvalidIssuer):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token issuer"})
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}
		cl, ok := token.Claims.(*claims)
		if !ok || !token.Valid || cl.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}
		c.Set(PlayerKey, cl.Subject)
		c.Set(RolesKey, cl.Roles)
		c.Next()
	}
}

// LoginRedirect sends browser requests carrying no token to loginPath.
// Requests with a token pass on to AuthMiddleware.
func LoginRedirect(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if cookie, err := c.Cookie(TokenCookie); err != nil || cookie == "" {
				c.Redirect(http.StatusSeeOther, loginPath)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// LocalPlayerMiddleware makes every request act as LocalPlayer with no roles.
func LocalPlayerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(PlayerKey, LocalPlayer)
		c.Set(RolesKey, []string{})
		c.Next()
	}
}

// Player returns the player id set by the auth middleware.
func Player(c *gin.Context) string {
	if p := c.GetString(PlayerKey); p != "" {
		return p
	}
	return LocalPlayer
}

// RoleCheckMiddleware checks if the player has one of the required roles.
func RoleCheckMiddleware(requiredRoles []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, exists := c.Get(RolesKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Player roles not found in context"})
			return
		}
		roles, ok := userRoles.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid player roles format"})
			return
		}
		for _, required := range requiredRoles {
			if utils.ContainsString(roles, required) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// CORS allows the configured browser origins to call the API.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	cfg.AddAllowHeaders("Authorization")
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// Logger middleware for request logging
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		log.Printf("[QUIZ] %s %s %s %d %s player=%s", c.Request.Method, c.Request.URL.Path, c.Request.Proto, c.Writer.Status(), latency, c.GetString(PlayerKey))
	}
}
