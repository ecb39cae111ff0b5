package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jcastellr/bodega-api/internal/interfaces/http"
	pkgjwt "github.com/jcastellr/bodega-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "bodega-api-test"
)

func testManager() *pkgjwt.Manager {
	return pkgjwt.NewManager(testJWTSecret, testIssuer, time.Hour)
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireApproved para autorizar mutaciones
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(manager *pkgjwt.Manager) *fiber.App {
	app := fiber.New(fiber.Config{
		// Silenciar errores internos en los tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	// Ruta protegida: JWT + cuenta aprobada
	app.Get("/protected",
		apphttp.AuthMiddleware(manager),
		apphttp.RequireApproved(),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenFor genera un JWT con el rol y estado de aprobación indicados.
func tokenFor(t *testing.T, manager *pkgjwt.Manager, role string, approved bool) string {
	t.Helper()
	tok, err := manager.Generate(testUserID, role, approved)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireApproved
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Cuenta aprobada → debe pasar (HTTP 200).
func TestRequireApproved_CuentaAprobadaAccede(t *testing.T) {
	manager := testManager()
	app := buildTestApp(manager)
	resp := doRequest(t, app, tokenFor(t, manager, "bodeguero", true))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"una cuenta aprobada debe poder acceder a rutas que mutan stock")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"], "la respuesta debe incluir ok:true")
	assert.Equal(t, "bodeguero", body["role"], "el role debe propagarse a locals")
}

// Caso 2: Cuenta pendiente de aprobación → HTTP 403 Forbidden.
func TestRequireApproved_CuentaPendienteBloqueada(t *testing.T) {
	manager := testManager()
	app := buildTestApp(manager)
	resp := doRequest(t, app, tokenFor(t, manager, "bodeguero", false))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"una cuenta sin aprobar no debe poder mutar stock")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN",
		"la respuesta de error debe incluir el código FORBIDDEN")
}

// Caso 3: Sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	manager := testManager()
	app := buildTestApp(manager)
	resp := doRequest(t, app, "") // sin header
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso 4: Token inválido / malformado → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	manager := testManager()
	app := buildTestApp(manager)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso 5: Header sin esquema Bearer → HTTP 401.
func TestAuthMiddleware_EsquemaIncorrecto_Retorna401(t *testing.T) {
	manager := testManager()
	app := buildTestApp(manager)
	resp := doRequest(t, app, "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware — extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	manager := testManager()
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(manager), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  apphttp.GetUserID(c),
			"approved": apphttp.IsApproved(c),
			"role":     apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, manager, "admin", true))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, true, body["approved"])
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	manager := testManager()
	tok, err := manager.Generate(testUserID, "bodeguero", true)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := manager.Parse(tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, "bodeguero", claims.Role)
	assert.True(t, claims.Approved)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	// TTL negativo emite un token ya expirado.
	expired := pkgjwt.NewManager(testJWTSecret, testIssuer, -time.Minute)
	tok, err := expired.Generate(testUserID, "admin", true)
	require.NoError(t, err)

	_, err = expired.Parse(tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	manager := testManager()
	tok, err := manager.Generate(testUserID, "admin", true)
	require.NoError(t, err)

	otro := pkgjwt.NewManager("otro-secret-completamente-distinto", testIssuer, time.Hour)
	_, err = otro.Parse(tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestJWT_TokenSinUserID_RetornaError(t *testing.T) {
	manager := testManager()
	tok, err := manager.Generate("", "admin", true)
	require.NoError(t, err)

	_, err = manager.Parse(tok)
	assert.Error(t, err, "un token sin user_id no identifica a nadie")
}
