package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memeboard/memeboard/internal/auth/model"
	"github.com/memeboard/memeboard/internal/auth/service"
	"github.com/memeboard/memeboard/internal/metrics"
	"github.com/memeboard/memeboard/internal/ratelimit"
)

const identityKey = "auth_identity"

// RequestGuard authenticates a request from its Authorization header
// and applies the per-account sliding-window limit. The failure answer
// never says which check failed: missing header, malformed scheme,
// forged or expired token all read the same to the client.
func RequestGuard(svc service.AuthService, limiter *ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.TokenResolutionsTotal.WithLabelValues("rejected").Inc()
			unauthorized(c)
			return
		}

		ident, err := svc.Resolve(c.Request.Context(), raw)
		if err != nil {
			metrics.TokenResolutionsTotal.WithLabelValues("error").Inc()
			log.Error("token resolution failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}
		if ident == nil {
			metrics.TokenResolutionsTotal.WithLabelValues("rejected").Inc()
			unauthorized(c)
			return
		}
		metrics.TokenResolutionsTotal.WithLabelValues("ok").Inc()

		res, err := limiter.Check(c.Request.Context(), strconv.FormatUint(ident.ID, 10), time.Now())
		if err != nil {
			log.Error("rate limit check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			c.Abort()
			return
		}
		if !res.Allowed {
			metrics.RateLimitDenialsTotal.WithLabelValues("identity").Inc()
			c.Header("Retry-After", strconv.Itoa(int(res.RetryAfter.Round(time.Second)/time.Second)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Set(identityKey, ident)
		c.Next()
	}
}

// IdentityFrom returns the identity the guard attached to the request.
func IdentityFrom(c *gin.Context) (*model.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	ident, ok := v.(*model.Identity)
	return ident, ok
}

// bearerToken extracts the credential from an Authorization header
// value. The scheme comparison is case-insensitive; the token itself is
// passed through untouched.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", false
	}
	return tok, true
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
}
