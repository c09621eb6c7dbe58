package middleware

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

// UserKey is the gin context key holding the authenticated *models.User
const UserKey = "user"

// UserResolver maps a verified identity onto a local user
type UserResolver interface {
	Resolve(ctx context.Context, id services.Identity) (*models.User, error)
}

// TokenVerifier checks Clerk session tokens (RS256) or locally signed
// development tokens (HS256).
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	secret    []byte
}

// NewTokenVerifier accepts a PEM public key, an HMAC secret, or both
func NewTokenVerifier(pemKey, secret string) (*TokenVerifier, error) {
	v := &TokenVerifier{}
	if pemKey != "" {
		// env files usually carry the key on one line
		pemKey = strings.ReplaceAll(pemKey, `\n`, "\n")
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemKey))
		if err != nil {
			return nil, errors.Wrap(err, "parse clerk public key")
		}
		v.publicKey = key
	}
	if secret != "" {
		v.secret = []byte(secret)
	}
	if v.publicKey == nil && v.secret == nil {
		return nil, errors.New("no token verification key configured")
	}
	return v, nil
}

func (v *TokenVerifier) keyFor(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodRSA:
		if v.publicKey != nil {
			return v.publicKey, nil
		}
	case *jwt.SigningMethodHMAC:
		if v.secret != nil {
			return v.secret, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// Verify parses the token and returns the identity it carries
func (v *TokenVerifier) Verify(tokenString string) (services.Identity, error) {
	token, err := jwt.Parse(tokenString, v.keyFor)
	if err != nil {
		return services.Identity{}, errors.Wrap(err, "parse token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return services.Identity{}, errors.New("invalid token claims")
	}
	return services.Identity{
		ClerkID:   claimString(claims, "sub"),
		Email:     claimString(claims, "email"),
		FirstName: claimString(claims, "first_name", "given_name"),
		LastName:  claimString(claims, "last_name", "family_name"),
		ImageURL:  claimString(claims, "image_url", "picture"),
	}, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func authenticate(c *gin.Context, verifier *TokenVerifier, users UserResolver) (*models.User, error) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, utils.UnauthorizedError("Please login for access", nil)
	}
	identity, err := verifier.Verify(tokenString)
	if err != nil {
		utils.LogDebug("Invalid token: %v", err)
		return nil, utils.UnauthorizedError("Please login for access", err)
	}
	return users.Resolve(c.Request.Context(), identity)
}

// AuthMiddleware rejects requests without a valid bearer token
func AuthMiddleware(verifier *TokenVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, verifier, users)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present
// and lets anonymous requests through. A bad token is still rejected.
func OptionalAuthMiddleware(verifier *TokenVerifier, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bearerToken(c) == "" {
			c.Next()
			return
		}
		user, err := authenticate(c, verifier, users)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			utils.Unauthorized(c, "Please login for access")
			return
		}
		if !user.IsAdmin() {
			utils.LogError("Non-admin user attempted admin access: %d", user.ID)
			utils.Forbidden(c, "Admin access required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user or nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// IsAdmin reports whether the request comes from an admin
func IsAdmin(c *gin.Context) bool {
	user := CurrentUser(c)
	return user != nil && user.IsAdmin()
}
