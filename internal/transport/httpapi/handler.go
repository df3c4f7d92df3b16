package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memeboard/memeboard/internal/auth/dto"
	customErrors "github.com/memeboard/memeboard/internal/auth/errors"
	"github.com/memeboard/memeboard/internal/auth/model"
	"github.com/memeboard/memeboard/internal/auth/service"
	"github.com/memeboard/memeboard/internal/metrics"
	"github.com/memeboard/memeboard/internal/ratelimit"
)

// Handler owns the auth endpoints.
type Handler struct {
	svc     service.AuthService
	limiter *ratelimit.Limiter
	log     *zap.Logger
}

func NewHandler(svc service.AuthService, limiter *ratelimit.Limiter, log *zap.Logger) *Handler {
	return &Handler{svc: svc, limiter: limiter, log: log}
}

// Register mounts the routes. ipLimit throttles the unauthenticated
// endpoints; the guard covers everything under /auth.
func (h *Handler) Register(router *gin.Engine, ipLimit gin.HandlerFunc) {
	pub := router.Group("/")
	if ipLimit != nil {
		pub.Use(ipLimit)
	}
	pub.POST("/register", h.register)
	pub.POST("/login", h.login)

	private := router.Group("/auth")
	private.Use(RequestGuard(h.svc, h.limiter, h.log))
	private.GET("/me", h.me)
	private.POST("/password", h.changePassword)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})
}

func (h *Handler) register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registerOutcome(err)).Inc()
		h.handleError(c, err)
		return
	}

	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, sessionResponse(session))
}

func (h *Handler) login(c *gin.Context) {
	var req dto.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("denied").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		if customErrors.IsInvalidCredentials(err) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		h.handleError(c, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, sessionResponse(session))
}

func (h *Handler) me(c *gin.Context) {
	ident, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": ident})
}

func (h *Handler) changePassword(c *gin.Context) {
	ident, ok := IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req dto.ChangePasswordDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), ident.ID, req); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case customErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case customErrors.IsInvalidCredentials(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case customErrors.IsInvalidToken(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case customErrors.IsDuplicateUsername(err) || customErrors.IsDuplicateEmail(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case customErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		if retryAfter, ok := customErrors.IsRateLimited(err); ok {
			c.Header("Retry-After", strconv.Itoa(int(retryAfter.Round(time.Second)/time.Second)))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		h.log.Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func registerOutcome(err error) string {
	switch {
	case customErrors.IsDuplicateUsername(err) || customErrors.IsDuplicateEmail(err):
		return "duplicate"
	case customErrors.IsInvalidArgument(err):
		return "invalid"
	default:
		return "error"
	}
}

func sessionResponse(s model.IssuedSession) gin.H {
	return gin.H{
		"token":      s.Token,
		"expires_at": s.ExpiresAt.Unix(),
		"user":       s.User,
	}
}
