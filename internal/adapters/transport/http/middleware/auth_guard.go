package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authsvc "github.com/picstream/auth-service/internal/app/auth/service"
	"github.com/picstream/auth-service/internal/domain/auth/model"
)

const ctxUserKey = "authUser"

// AuthGuard validates the bearer access token and stores the resolved user
// in the request context. Handlers behind it can rely on UserFromContext.
func AuthGuard(svc authsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		user, err := svc.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func UserFromContext(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}
