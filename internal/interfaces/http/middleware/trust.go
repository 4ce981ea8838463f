package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopledger/backend/internal/infrastructure/auth"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/interfaces/http/dto"
)

// Trust mode names, mirroring the http.auth_mode config value.
const (
	TrustModeHeaders = "headers"
	TrustModeJWT     = "jwt"
)

// Gin context keys and headers populated by the trust middleware.
const (
	// TenantIDKey is the gin context key holding the caller's tenant ID.
	TenantIDKey = "tenant_id"
	// UserIDKey is the gin context key holding the acting user's ID.
	UserIDKey = "user_id"
	// TenantIDHeader carries the tenant ID in headers trust mode.
	TenantIDHeader = "X-Tenant-ID"
	// UserIDHeader carries the acting user ID in headers trust mode.
	UserIDHeader = "X-User-ID"
)

var (
	errIdentityHeadersMissing = errors.New("missing identity headers")
	errIdentityMalformed      = errors.New("malformed identity headers")
	errBearerTokenMissing     = errors.New("missing bearer token")
	errVerifierNotConfigured  = errors.New("gateway token verifier not configured")
)

// TrustConfig configures how caller identity is established. The service
// never authenticates users itself; it trusts what the gateway in front of
// it injected, either as signed claims or as plain headers on a network
// where only the gateway can reach the service.
type TrustConfig struct {
	// Mode is TrustModeHeaders or TrustModeJWT.
	Mode string
	// Verifier checks gateway token signatures in jwt mode.
	Verifier *auth.TokenVerifier
	// SkipPaths bypass identity resolution entirely, e.g. health probes.
	SkipPaths []string
	// Logger records rejected requests. Optional.
	Logger *zap.Logger
}

// GatewayTrust returns the middleware that resolves tenant and user identity
// for every request. On success both IDs land in the gin context, and the
// request context gains a logger enriched with request, tenant and user IDs
// so everything downstream logs with full correlation. On failure the
// request is rejected with 401 before any handler runs.
func GatewayTrust(cfg TrustConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		var (
			tenantID uuid.UUID
			userID   uuid.UUID
			err      error
		)
		switch cfg.Mode {
		case TrustModeJWT:
			tenantID, userID, err = identityFromToken(c, cfg.Verifier)
		default:
			tenantID, userID, err = identityFromHeaders(c)
		}
		if err != nil {
			log.Warn("request rejected without trusted identity",
				zap.String("path", c.Request.URL.Path),
				zap.String("mode", cfg.Mode),
				zap.Error(err),
			)
			respondUnauthorized(c, err.Error())
			return
		}

		c.Set(TenantIDKey, tenantID.String())
		c.Set(UserIDKey, userID.String())

		reqLogger := logger.GetGinLogger(c)
		ctx := c.Request.Context()
		ctx, reqLogger = logger.WithRequestID(ctx, reqLogger, GetRequestID(c))
		ctx, reqLogger = logger.WithTenantID(ctx, reqLogger, tenantID.String())
		ctx, reqLogger = logger.WithUserID(ctx, reqLogger, userID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set("logger", reqLogger)

		c.Next()
	}
}

// identityFromHeaders reads identity from gateway-injected headers. Both
// headers are required and must be well-formed, non-nil UUIDs.
func identityFromHeaders(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	rawTenant := c.GetHeader(TenantIDHeader)
	rawUser := c.GetHeader(UserIDHeader)
	if rawTenant == "" || rawUser == "" {
		return uuid.Nil, uuid.Nil, errIdentityHeadersMissing
	}

	tenantID, err := uuid.Parse(rawTenant)
	if err != nil || tenantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, errIdentityMalformed
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, uuid.Nil, errIdentityMalformed
	}
	return tenantID, userID, nil
}

// identityFromToken reads identity from a gateway-signed bearer token.
func identityFromToken(c *gin.Context, verifier *auth.TokenVerifier) (uuid.UUID, uuid.UUID, error) {
	if verifier == nil {
		return uuid.Nil, uuid.Nil, errVerifierNotConfigured
	}

	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		return uuid.Nil, uuid.Nil, errBearerTokenMissing
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, userID, nil
}

func respondUnauthorized(c *gin.Context, message string) {
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, GetRequestID(c))
	c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
}

// GetTenantUUID returns the tenant ID resolved by GatewayTrust.
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(TenantIDKey))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetUserUUID returns the acting user ID resolved by GatewayTrust.
func GetUserUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(UserIDKey))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
