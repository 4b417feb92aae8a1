package server

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
)

const (
	ctxUserKey  = "auth.user"
	ctxAdminKey = "auth.admin"
)

// RequestLogger logs each request once it completes.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	return token, true
}

// AuthRequired accepts user tokens only and loads the account into
// the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := s.bearerToken(c)
		if !ok {
			AbortWithError(c, errUnauthorized)
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil || claims.Admin {
			AbortWithError(c, errUnauthorized)
			return
		}

		id, err := snowflake.ParseString(claims.Subject)
		if err != nil {
			AbortWithError(c, errUnauthorized)
			return
		}

		user, err := s.identityRepo.FindUserByID(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, errUnauthorized)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// AdminRequired accepts admin tokens only; the account must still be
// active.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := s.bearerToken(c)
		if !ok {
			AbortWithError(c, errUnauthorized)
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil || !claims.Admin {
			AbortWithError(c, errUnauthorized)
			return
		}

		id, err := snowflake.ParseString(claims.Subject)
		if err != nil {
			AbortWithError(c, errUnauthorized)
			return
		}

		admin, err := s.identityRepo.FindAdminByID(c.Request.Context(), id)
		if err != nil {
			AbortWithError(c, errUnauthorized)
			return
		}
		if !admin.IsActive {
			AbortWithError(c, errForbidden)
			return
		}

		c.Set(ctxAdminKey, admin)
		c.Next()
	}
}

func currentUser(c *gin.Context) (*identitydomain.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*identitydomain.User)
	return user, ok
}

func currentAdmin(c *gin.Context) (*identitydomain.AdminUser, bool) {
	v, ok := c.Get(ctxAdminKey)
	if !ok {
		return nil, false
	}
	admin, ok := v.(*identitydomain.AdminUser)
	return admin, ok
}
