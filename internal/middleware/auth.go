package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/deppfellow/go-crud/internal/crud"
	"github.com/deppfellow/go-crud/internal/errs"
	"github.com/deppfellow/go-crud/internal/server"
	"github.com/labstack/echo/v4"
)

const PermissionsKey = "permissions"

type AuthMiddleware struct {
	server *server.Server

	// sessionClaims reads the claims left by Clerk's middleware.
	sessionClaims func(ctx context.Context) (*clerk.SessionClaims, bool)
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server:        s,
		sessionClaims: clerk.SessionClaimsFromContext,
	}
}

// RequireAuth verifies the Clerk bearer token and exposes the caller as a
// crud.Principal in the request context.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		),
	)(auth.authenticated(next))
}

// writeUnauthorized runs outside echo, so it writes the HTTPError itself.
func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("request rejected: missing or invalid session token")
}

func (auth *AuthMiddleware) authenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		claims, ok := auth.sessionClaims(c.Request().Context())
		if !ok || claims == nil {
			GetLogger(c).Error().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("could not get session claims from context")

			return errs.NewUnauthorizedError("Unauthorized", false)
		}

		principal := PrincipalFromClaims(claims)

		c.Set(UserIDKey, principal.UserID)
		c.Set(UserRoleKey, principal.Role)
		c.Set(PermissionsKey, principal.Permissions)

		requestLogger := GetLogger(c).With().
			Str(UserIDKey, principal.UserID).
			Str(UserRoleKey, principal.Role).
			Logger()
		SetLogger(c, requestLogger)

		c.SetRequest(c.Request().WithContext(crud.WithPrincipal(c.Request().Context(), principal)))

		requestLogger.Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

// PrincipalFromClaims maps Clerk session claims onto the caller identity used
// by services.
func PrincipalFromClaims(claims *clerk.SessionClaims) crud.Principal {
	return crud.Principal{
		UserID:      claims.Subject,
		Role:        claims.ActiveOrganizationRole,
		Permissions: claims.Claims.ActiveOrganizationPermissions,
	}
}
