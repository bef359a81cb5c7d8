package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/wooglin/roster-api/internal/constants"
	apierrors "github.com/wooglin/roster-api/internal/errors"
	"github.com/wooglin/roster-api/internal/services"
)

// CallerResolver turns a session user id into a Caller.
type CallerResolver interface {
	GetCaller(userID uint64) (*services.Caller, error)
}

// RequireAuth checks if the user is authenticated via session and stores
// the resolved Caller in the context.
func RequireAuth(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, resolver) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects callers without the staff flag. It must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !caller.IsStaff {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAPIKeyOrAuth accepts either a configured API key, sent as
// "Authorization: Api-Key <key>" or "X-API-Key: <key>", or a session.
func RequireAPIKeyOrAuth(keys []string, resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := apiKey(c); key != "" && validKey(keys, key) {
			c.Set(constants.ContextKeyCaller, services.Caller{Username: "api-key"})
			c.Next()
			return
		}

		if !authenticate(c, resolver) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(userID)
}

// GetCaller retrieves the authenticated Caller from context
func GetCaller(c *gin.Context) (services.Caller, bool) {
	v, exists := c.Get(constants.ContextKeyCaller)
	if !exists {
		return services.Caller{}, false
	}
	caller, ok := v.(services.Caller)
	return caller, ok
}

func authenticate(c *gin.Context, resolver CallerResolver) bool {
	session := sessions.Default(c)
	userID, ok := toUint64(session.Get(constants.ContextKeyUserID))
	if !ok {
		return false
	}

	caller, err := resolver.GetCaller(userID)
	if err != nil {
		return false
	}

	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyCaller, *caller)
	return true
}

func apiKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	header := c.GetHeader("Authorization")
	if key, found := strings.CutPrefix(header, "Api-Key "); found {
		return strings.TrimSpace(key)
	}
	return ""
}

func validKey(keys []string, key string) bool {
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

func toUint64(v any) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
