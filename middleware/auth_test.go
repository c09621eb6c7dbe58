package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "dev-secret"

func hsToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": sub + "@example.com",
		"exp":   exp.Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func protectedRouter(t *testing.T, verifier *TokenVerifier) (*gin.Engine, *services.UserService) {
	t.Helper()
	db := testutil.NewTestDB(t)
	users := services.NewUserService(db)

	r := testutil.NewTestRouter()
	r.GET("/public", OptionalAuthMiddleware(verifier, users), func(c *gin.Context) {
		if user := CurrentUser(c); user != nil {
			c.JSON(http.StatusOK, gin.H{"user": user.ClerkID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": ""})
	})
	r.GET("/me", AuthMiddleware(verifier, users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": CurrentUser(c).ClerkID, "role": CurrentUser(c).Role})
	})
	r.GET("/admin", AuthMiddleware(verifier, users), AdminMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, users
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthMiddlewareHS256(t *testing.T) {
	verifier, err := NewTokenVerifier("", testSecret)
	require.NoError(t, err)
	r, _ := protectedRouter(t, verifier)

	resp := testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/me"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := hsToken(t, "user_abc", time.Now().Add(time.Hour))
	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/me", Headers: bearer(token)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user_abc", resp.Body["user"])
	assert.Equal(t, models.RoleCustomer, resp.Body["role"], "unknown users are created as customers")

	expired := hsToken(t, "user_abc", time.Now().Add(-time.Minute))
	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/me", Headers: bearer(expired)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user_abc", "exp": time.Now().Add(time.Hour).Unix()})
	forgedString, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/me", Headers: bearer(forgedString)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddlewareRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))

	verifier, err := NewTokenVerifier(strings.ReplaceAll(pemKey, "\n", `\n`), "")
	require.NoError(t, err)
	r, _ := protectedRouter(t, verifier)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{"sub": "user_rsa", "exp": time.Now().Add(time.Hour).Unix()})
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	resp := testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/me", Headers: bearer(signed)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user_rsa", resp.Body["user"])

	// an HS256 token must not be accepted when only the RSA key is configured
	hs := hsToken(t, "user_rsa", time.Now().Add(time.Hour))
	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/me", Headers: bearer(hs)})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	verifier, err := NewTokenVerifier("", testSecret)
	require.NoError(t, err)
	r, _ := protectedRouter(t, verifier)

	resp := testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/public"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "", resp.Body["user"])

	token := hsToken(t, "user_opt", time.Now().Add(time.Hour))
	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/public", Headers: bearer(token)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user_opt", resp.Body["user"])

	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/public", Headers: bearer("garbage")})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminMiddleware(t *testing.T) {
	verifier, err := NewTokenVerifier("", testSecret)
	require.NoError(t, err)
	r, users := protectedRouter(t, verifier)

	token := hsToken(t, "user_admin", time.Now().Add(time.Hour))
	resp := testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/admin", Headers: bearer(token)})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, err = users.Sync(context.Background(), services.Identity{ClerkID: "user_admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/admin", Headers: bearer(token)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewTokenVerifierNeedsAKey(t *testing.T) {
	_, err := NewTokenVerifier("", "")
	assert.Error(t, err)
	_, err = NewTokenVerifier("not a pem", "")
	assert.Error(t, err)
}

func TestCheckoutStateRoundTrip(t *testing.T) {
	r := testutil.NewTestRouter()
	r.Use(CheckoutSession("0123456789abcdef0123456789abcdef", false), CheckoutState())
	r.POST("/points", func(c *gin.Context) {
		require.NoError(t, SaveCheckoutPoints(c, decimal.NewFromInt(50000)))
		c.JSON(http.StatusOK, gin.H{})
	})
	r.GET("/points", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"points": CheckoutPoints(c).String()})
	})

	resp := testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodGet, Path: "/points"})
	assert.Equal(t, "0", resp.Body["points"])

	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{Method: http.MethodPost, Path: "/points"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Raw.Result().Cookies()
	require.NotEmpty(t, cookies)

	resp = testutil.MakeTestRequest(t, r, testutil.TestRequest{
		Method:  http.MethodGet,
		Path:    "/points",
		Headers: map[string]string{"Cookie": cookies[0].Name + "=" + cookies[0].Value},
	})
	assert.Equal(t, "50000", resp.Body["points"])
}
