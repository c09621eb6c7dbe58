// Package app assembles services, controllers and the router from configuration.
package app

import (
	"github.com/Govind-619/ShuttleHub/config"
	"github.com/Govind-619/ShuttleHub/controllers"
	"github.com/Govind-619/ShuttleHub/middleware"
	"github.com/Govind-619/ShuttleHub/routes"
	"github.com/Govind-619/ShuttleHub/services"
	"github.com/Govind-619/ShuttleHub/utils"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const devSessionSecret = "shuttlehub-development-session-key"

// App is the wired application
type App struct {
	Router     *gin.Engine
	Orders     *services.OrderService
	Promotions *services.PromotionService
	Notifier   *services.Notifier
}

// Deps are the external resources; Redis, Mailer and Gateway may be nil
type Deps struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Mailer  utils.Mailer
	Gateway services.PaymentGateway
}

// NewGateway returns the Stripe gateway, or nil when no key is configured
func NewGateway(cfg config.StripeConfig) services.PaymentGateway {
	if cfg.SecretKey == "" {
		utils.LogInfo("Stripe not configured, card checkout disabled")
		return nil
	}
	return services.NewStripeGateway(cfg.SecretKey, cfg.WebhookSecret, cfg.Currency, cfg.ExchangeRate)
}

// NewMailer returns an SMTP mailer, or a logging one when SMTP is not configured
func NewMailer(cfg config.SMTPConfig) utils.Mailer {
	if !cfg.Enabled() {
		return utils.LogMailer{}
	}
	return utils.NewSMTPMailer(utils.EmailConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
}

func New(cfg *config.Config, deps Deps) (*App, error) {
	loc := cfg.Location()
	pricing := utils.NewPricing(cfg.Pricing.FreeShippingThreshold, cfg.Pricing.FlatShippingFee, cfg.Pricing.PointsRate)
	vietqr := utils.VietQR{
		BankID:      cfg.VietQR.BankID,
		AccountNo:   cfg.VietQR.AccountNo,
		AccountName: cfg.VietQR.AccountName,
		Template:    cfg.VietQR.Template,
	}

	sessionSecret := cfg.Auth.SessionSecret
	if sessionSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("SESSION_SECRET is required in production")
		}
		sessionSecret = devSessionSecret
	}
	verifier, err := middleware.NewTokenVerifier(cfg.Auth.ClerkPEMPublicKey, cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}

	db := deps.DB
	cache := services.NewProductCache(deps.Redis, cfg.Redis.TTL)
	notifier := services.NewNotifier(deps.Mailer, cfg.App.StoreName)
	users := services.NewUserService(db)
	orders := services.NewOrderService(db, pricing, notifier, loc)
	if deps.Gateway != nil {
		orders.UseSessionExpirer(deps.Gateway)
	}
	carts := services.NewCartService(db, pricing)
	promotions := services.NewPromotionService(db, cache)
	checkout := services.NewCheckoutService(db, orders, carts, deps.Gateway, vietqr, cfg.App.FrontendURL)

	var clerk *services.ClerkWebhook
	if cfg.Auth.ClerkWebhookSecret != "" {
		if clerk, err = services.NewClerkWebhook(cfg.Auth.ClerkWebhookSecret, users); err != nil {
			return nil, err
		}
	}

	h := routes.Controllers{
		Products:   controllers.NewProductController(services.NewProductService(db, cache), promotions),
		Promotions: controllers.NewPromotionController(promotions, loc),
		Orders: controllers.NewOrderController(orders, checkout, services.InvoiceOptions{
			StoreName:   cfg.App.StoreName,
			FrontendURL: cfg.App.FrontendURL,
			Location:    loc,
		}),
		Checkout:   controllers.NewCheckoutController(checkout),
		Webhooks:   controllers.NewWebhookController(checkout, deps.Gateway, clerk),
		Carts:      controllers.NewCartController(carts),
		Addresses:  controllers.NewAddressController(services.NewAddressService(db)),
		Categories: controllers.NewCategoryController(services.NewCategoryService(db, cache)),
		Posts:      controllers.NewPostController(services.NewPostService(db)),
		Codes:      controllers.NewDiscountCodeController(services.NewDiscountCodeService(db)),
		Users:      controllers.NewUserController(users),
		Health:     controllers.NewHealthController(db, deps.Redis),
	}

	router := routes.SetupRouter(h, routes.Options{
		CORSOrigins:   cfg.App.CORSOrigins,
		SessionSecret: sessionSecret,
		SecureCookies: cfg.IsProduction(),
		Verifier:      verifier,
		Users:         users,
	})

	return &App{
		Router:     router,
		Orders:     orders,
		Promotions: promotions,
		Notifier:   notifier,
	}, nil
}
