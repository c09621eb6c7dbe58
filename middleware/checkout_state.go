package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	checkoutSessionName = "shuttlehub_checkout"
	pointsSessionKey    = "points"
	pointsContextKey    = "checkout_points"
)

// CheckoutSession keeps per-visitor checkout state in a signed cookie
func CheckoutSession(secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/api",
		MaxAge:   60 * 60 * 24,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(checkoutSessionName, store)
}

// CheckoutState loads the stored checkout choices into the request context
func CheckoutState() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		points := decimal.Zero
		if raw, ok := session.Get(pointsSessionKey).(string); ok {
			if d, err := decimal.NewFromString(raw); err == nil && d.IsPositive() {
				points = d
			}
		}
		c.Set(pointsContextKey, points)
		c.Next()
	}
}

// CheckoutPoints returns the points the visitor chose to redeem
func CheckoutPoints(c *gin.Context) decimal.Decimal {
	if v, ok := c.Get(pointsContextKey); ok {
		if d, ok := v.(decimal.Decimal); ok {
			return d
		}
	}
	return decimal.Zero
}

// SaveCheckoutPoints remembers the points to redeem; zero forgets them
func SaveCheckoutPoints(c *gin.Context, points decimal.Decimal) error {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return errors.New("checkout session middleware not installed")
	}
	session := sessions.Default(c)
	if points.IsPositive() {
		session.Set(pointsSessionKey, points.String())
	} else {
		session.Delete(pointsSessionKey)
	}
	c.Set(pointsContextKey, points)
	return errors.Wrap(session.Save(), "save checkout session")
}

// ClearCheckoutState drops the stored choices after an order is placed
func ClearCheckoutState(c *gin.Context) error {
	return SaveCheckoutPoints(c, decimal.Zero)
}
