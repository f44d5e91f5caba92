package middleware

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/sariqmarket/b2b-backend/internal/model"
)

const sessionKey = "adminSession"

type AuthMiddleware struct {
	authClient *auth.Client
}

func NewAuthMiddleware(ctx context.Context, projectID string) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "FIREBASE_PROJECT_ID is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{authClient: client}, nil
}

// RequireAdmin verifies the bearer token and materializes the caller as an
// explicit AdminSession on the request context. Moderation handlers read the
// session and pass it down; nothing below this layer trusts ambient state.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		token, err := m.authClient.VerifyIDToken(c.Request().Context(), tokenStr)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}
		session := model.AdminSession{UID: token.UID}
		if email, ok := token.Claims["email"].(string); ok {
			session.Email = email
		}
		if admin, ok := token.Claims["admin"].(bool); ok {
			session.Admin = admin
		}
		if !session.Admin {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		c.Set(sessionKey, session)
		return next(c)
	}
}

func (m *AuthMiddleware) Client() *auth.Client {
	return m.authClient
}

// SessionFrom returns the AdminSession placed by RequireAdmin. The zero
// session (Admin=false) comes back when the middleware did not run.
func SessionFrom(c echo.Context) model.AdminSession {
	s, _ := c.Get(sessionKey).(model.AdminSession)
	return s
}

func SetSession(c echo.Context, s model.AdminSession) {
	c.Set(sessionKey, s)
}
