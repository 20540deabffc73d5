package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academy-api/internal/config"
	"github.com/noah-isme/academy-api/internal/handler"
	"github.com/noah-isme/academy-api/internal/middleware"
	"github.com/noah-isme/academy-api/internal/models"
	"github.com/noah-isme/academy-api/internal/router"
	"github.com/noah-isme/academy-api/internal/service"
)

type noopWithdrawal struct{}

func (noopWithdrawal) Withdraw(context.Context, models.Role, uint, string) error { return nil }

type fixedCode struct{}

func (fixedCode) Generate(context.Context) (string, error) { return "ABCDEFGH", nil }

type emptyAudit struct{}

func (emptyAudit) Inspect(context.Context, string) (service.RetentionInspection, error) {
	return service.RetentionInspection{}, service.ErrRetentionRecordNotFound
}

func (emptyAudit) ListHistory(context.Context, string, int, int) (service.WithdrawalHistoryPage, error) {
	return service.WithdrawalHistoryPage{Page: 1, PageSize: 20}, nil
}

func newApp(role string) *fiber.App {
	cfg := config.Config{AppName: "Academy API", AppEnv: "test", RateLimitMax: 2, RateLimitWindow: time.Minute}
	logger := zerolog.Nop()

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		WithdrawalHandler:     handler.NewWithdrawalHandler(noopWithdrawal{}, validator.New(), logger),
		AcademyCodeHandler:    handler.NewAcademyCodeHandler(fixedCode{}, logger),
		RetentionAuditHandler: handler.NewRetentionAuditHandler(emptyAudit{}, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals(middleware.LocalUserID, uint(5))
			c.Locals(middleware.LocalUserRole, role)
			return c.Next()
		},
	})
	return app
}

func status(t *testing.T, app *fiber.App, method, target string) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRegisterExposesHealthAndMetrics(t *testing.T) {
	app := newApp("STUDENT")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Academy API", resp.Header.Get("X-Application"))

	require.Equal(t, fiber.StatusOK, status(t, app, http.MethodGet, "/metrics"))
}

func TestRegisterGuardsRoutesByRole(t *testing.T) {
	student := newApp("STUDENT")
	require.Equal(t, fiber.StatusOK, status(t, student, http.MethodDelete, "/api/v2/account"))
	require.Equal(t, fiber.StatusForbidden, status(t, student, http.MethodGet, "/api/v2/academies/code"))
	require.Equal(t, fiber.StatusForbidden, status(t, student, http.MethodGet, "/api/admin/withdrawals"))

	principal := newApp("PRINCIPAL")
	require.Equal(t, fiber.StatusOK, status(t, principal, http.MethodGet, "/api/v2/academies/code"))

	admin := newApp("ADMIN")
	require.Equal(t, fiber.StatusOK, status(t, admin, http.MethodGet, "/api/admin/withdrawals"))
	require.Equal(t, fiber.StatusNotFound, status(t, admin, http.MethodGet, "/api/admin/retention/ANON_MISSING"))
}

func TestRegisterRateLimitsWithdrawals(t *testing.T) {
	app := newApp("STUDENT")

	require.Equal(t, fiber.StatusOK, status(t, app, http.MethodDelete, "/api/v2/account"))
	require.Equal(t, fiber.StatusOK, status(t, app, http.MethodDelete, "/api/v2/account"))
	require.Equal(t, fiber.StatusTooManyRequests, status(t, app, http.MethodDelete, "/api/v2/account"))
}
