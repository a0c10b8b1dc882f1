package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"socialshop/internal/auth"
	"socialshop/internal/service/account"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	guestTokenHeader = "X-Guest-Token"
	profileCtxKey    = "profile"
	sessionCtxKey    = "session"
)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	})
}

// authMiddleware attributes the request to a profile or a guest. A bearer
// token is tried as a profile token first, then as a guest token. The
// X-Guest-Token header adds the guest identity next to a profile, which is
// how a login adopts the guest cart. Requests without credentials pass
// through unattributed.
func authMiddleware(accounts accountService, guests guestService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if token := bearerToken(c.GetHeader("Authorization")); token != "" {
			p, err := accounts.LookupByToken(ctx, token)
			switch {
			case err == nil:
				ctx = auth.WithProfile(ctx, p.ID)
				c.Set(profileCtxKey, p)
			case errors.Is(err, account.ErrInvalidToken):
				guestID, gerr := guests.LookupByToken(ctx, token)
				if gerr != nil {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
					return
				}
				ctx = auth.WithGuest(ctx, guestID)
			default:
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		}
		if _, isGuest := auth.GuestID(ctx); !isGuest {
			if gt := strings.TrimSpace(c.GetHeader(guestTokenHeader)); gt != "" {
				if guestID, err := guests.LookupByToken(ctx, gt); err == nil {
					ctx = auth.WithGuest(ctx, guestID)
				}
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func requireProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.ProfileID(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}

func requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := auth.SessionKey(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in or start a guest session"})
			return
		}
		c.Set(sessionCtxKey, key)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
