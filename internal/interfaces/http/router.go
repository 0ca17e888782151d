package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	campaignapp "github.com/hhbot/dispatcher/internal/application/campaign"
	dispatchapp "github.com/hhbot/dispatcher/internal/application/dispatch"
	linkapp "github.com/hhbot/dispatcher/internal/application/link"
	notificationapp "github.com/hhbot/dispatcher/internal/application/notification"
	paymentapp "github.com/hhbot/dispatcher/internal/application/payment"
	quotaapp "github.com/hhbot/dispatcher/internal/application/quota"
	referralapp "github.com/hhbot/dispatcher/internal/application/referral"
	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	tokenapp "github.com/hhbot/dispatcher/internal/application/token"
	userapp "github.com/hhbot/dispatcher/internal/application/user"
	"github.com/hhbot/dispatcher/internal/domain/clock"
	"github.com/hhbot/dispatcher/internal/infrastructure/cache"
	"github.com/hhbot/dispatcher/internal/infrastructure/config"
	"github.com/hhbot/dispatcher/internal/infrastructure/hhclient"
	"github.com/hhbot/dispatcher/internal/infrastructure/oauthstate"
	"github.com/hhbot/dispatcher/internal/infrastructure/payout"
	"github.com/hhbot/dispatcher/internal/infrastructure/ratelimit"
	"github.com/hhbot/dispatcher/internal/infrastructure/repository"
	"github.com/hhbot/dispatcher/internal/infrastructure/telegram"
	"github.com/hhbot/dispatcher/internal/interfaces/http/handlers"
	"github.com/hhbot/dispatcher/internal/interfaces/http/middleware"
	"github.com/hhbot/dispatcher/internal/shared/db"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// Services bundles the application-layer collaborators the HTTP surface and
// the background schedulers (cmd/server) both need, so they are built once
// and shared rather than re-wired per surface.
type Services struct {
	Campaign     *campaignapp.Service
	Dispatch     *dispatchapp.Service
	Notification *notificationapp.Service
	Payment      *paymentapp.Service
	Quota        *quotaapp.Service
	Token        *tokenapp.Service
	Link         *linkapp.Service
	User         *userapp.Service
	Referral     *referralapp.Service
	Notifier     ports.Notifier
}

// Repositories bundles the gorm-backed DAOs, also shared with the
// background schedulers.
type Repositories struct {
	Users         *repository.UserRepository
	Campaigns     *repository.CampaignRepository
	SavedRequests *repository.SavedRequestRepository
	Applications  *repository.ApplicationRepository
	Resumes       *repository.ResumeRepository
	HHTokens      *repository.HHTokenRepository
	Subscriptions *repository.SubscriptionRepository
	Notifications *repository.NotificationRepository
	Referrals     *repository.ReferralRepository
	Payments      *repository.PaymentRepository
}

// BuildRepositories constructs every gorm-backed DAO against gdb.
func BuildRepositories(gdb *gorm.DB) *Repositories {
	return &Repositories{
		Users:         repository.NewUserRepository(gdb),
		Campaigns:     repository.NewCampaignRepository(gdb),
		SavedRequests: repository.NewSavedRequestRepository(gdb),
		Applications:  repository.NewApplicationRepository(gdb),
		Resumes:       repository.NewResumeRepository(gdb),
		HHTokens:      repository.NewHHTokenRepository(gdb),
		Subscriptions: repository.NewSubscriptionRepository(gdb),
		Notifications: repository.NewNotificationRepository(gdb),
		Referrals:     repository.NewReferralRepository(gdb),
		Payments:      repository.NewPaymentRepository(gdb),
	}
}

// BuildServices wires every application service against repos and the
// shared infrastructure collaborators (HH API client, OAuth state store and
// signer, Telegram notifier, refresh lock, advisory payout routine).
func BuildServices(repos *Repositories, gdb *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Services {
	hh := hhclient.New(cfg.HH, 0, 0)
	stateStore := cache.NewRedisStateStore(redisClient, "hh:oauth-state:", 0)
	signer := oauthstate.NewSigner(cfg.HH.StateSecret, 0)
	refreshLock := cache.NewRedisRefreshLock(redisClient, "")
	notifier := telegram.New(cfg.Telegram.BotToken)
	payoutRoutine := payout.New(repos.Users, log)
	tx := db.NewTransactionManager(gdb)

	tokenSvc := tokenapp.NewService(repos.Users, repos.HHTokens, repos.Resumes, repos.Referrals, hh, refreshLock, log)
	linkSvc := linkapp.NewService(hh, stateStore, signer, tokenSvc)
	userSvc := userapp.NewService(repos.Users)
	referralSvc := referralapp.NewService(repos.Users, repos.Referrals)

	quotaSvc := quotaapp.NewService(repos.Subscriptions, repos.Applications, clock.RealClock{}, quotaapp.Config{
		HardDailyCap: cfg.Quota.HardDailyCap,
		FreeDailyCap: cfg.Quota.FreeDailyCap,
		PaidDailyCap: cfg.Quota.PaidDailyCap,
	})
	notificationSvc := notificationapp.NewService(repos.Subscriptions, repos.Notifications, repos.Users, notifier, log)

	dispatchSvc := dispatchapp.NewService(repos.Applications, tokenSvc, quotaSvc, notificationSvc, hh, tx, log, cfg.Worker.Concurrency)
	campaignSvc := campaignapp.NewService(repos.Campaigns, repos.SavedRequests, repos.Resumes, repos.Applications, tokenSvc, quotaSvc, notificationSvc, hh, log, cfg.Worker.Concurrency)
	paymentSvc := paymentapp.NewService(repos.Payments, repos.Subscriptions, payoutRoutine, []byte(cfg.Payment.APISecret), log)

	return &Services{
		Campaign:     campaignSvc,
		Dispatch:     dispatchSvc,
		Notification: notificationSvc,
		Payment:      paymentSvc,
		Quota:        quotaSvc,
		Token:        tokenSvc,
		Link:         linkSvc,
		User:         userSvc,
		Referral:     referralSvc,
		Notifier:     notifier,
	}
}

// Router wires every HTTP handler and middleware chain over an already
// built Services/Repositories pair.
type Router struct {
	engine *gin.Engine

	users         *handlers.UserHandler
	link          *handlers.LinkHandler
	savedRequests *handlers.SavedRequestHandler
	campaigns     *handlers.CampaignHandler
	applications  *handlers.ApplicationHandler
	quota         *handlers.QuotaHandler
	subscriptions *handlers.SubscriptionHandler
	referrals     *handlers.ReferralHandler
	payment       *handlers.PaymentHandler

	loginLimiter ratelimit.RateLimiter

	cfg *config.Config
	log logger.Interface
}

// NewRouter builds the Router from already-wired services and repositories,
// so cmd/server can share the exact same Services instance with the
// background schedulers.
func NewRouter(svcs *Services, repos *Repositories, redisClient *redis.Client, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	return &Router{
		engine: engine,

		loginLimiter: ratelimit.NewRedisRateLimiter(redisClient),

		users:         handlers.NewUserHandler(svcs.User, log),
		link:          handlers.NewLinkHandler(svcs.Link, svcs.Token, repos.Resumes, svcs.Notifier, cfg.Server.FrontendCallbackURL, log),
		savedRequests: handlers.NewSavedRequestHandler(repos.SavedRequests, log),
		campaigns:     handlers.NewCampaignHandler(repos.Campaigns, svcs.Campaign, log),
		applications:  handlers.NewApplicationHandler(repos.Applications, svcs.Dispatch, log),
		quota:         handlers.NewQuotaHandler(svcs.Quota, repos.Users, log),
		subscriptions: handlers.NewSubscriptionHandler(repos.Subscriptions, log),
		referrals:     handlers.NewReferralHandler(svcs.Referral, log),
		payment:       handlers.NewPaymentHandler(svcs.Payment, log),

		cfg: cfg,
		log: log,
	}
}

// SetupRoutes registers every route from the HTTP control surface (§6.3)
// plus the payment-confirmation webhook (§6.2). The internal API token
// gates every route except the OAuth callback and the payment webhook,
// which authenticate differently.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) { c.Status(200) })

	r.engine.GET("/hh/callback", r.link.Callback)
	r.engine.POST("/payments/webhook", r.payment.Succeeded)

	internal := r.engine.Group("")
	internal.Use(middleware.InternalAuth(r.cfg.Server.InternalAPIToken, r.log))
	{
		internal.POST("/users/seen", r.users.Seen)
		internal.POST("/users/register", r.users.Register)
		internal.POST("/users/utm", r.users.SetUTM)

		internal.GET("/hh/login", middleware.LoginRateLimit(r.loginLimiter, r.log), r.link.Login)
		internal.GET("/hh/link-status", r.link.LinkStatus)
		internal.POST("/hh/unlink", r.link.Unlink)
		internal.POST("/hh/refresh", r.link.Refresh)
		internal.GET("/hh/resumes", r.link.Resumes)
		internal.POST("/hh/resumes/sync", r.link.SyncResumes)

		internal.GET("/saved-requests", r.savedRequests.List)
		internal.POST("/saved-requests", r.savedRequests.Create)
		internal.POST("/saved-requests/:id", r.savedRequests.Update)
		internal.DELETE("/saved-requests/:id", r.savedRequests.Delete)

		internal.GET("/hh/campaigns", r.campaigns.List)
		internal.POST("/hh/campaigns/upsert", r.campaigns.Upsert)
		internal.POST("/hh/campaigns/start", r.campaigns.Start)
		internal.POST("/hh/campaigns/stop", r.campaigns.Stop)
		internal.POST("/hh/campaigns/delete", r.campaigns.Delete)
		internal.POST("/hh/campaigns/send_now", r.campaigns.SendNow)
		internal.POST("/hh/campaigns/auto_tick", r.campaigns.AutoTick)

		internal.POST("/hh/applications/queue", r.applications.Queue)
		internal.POST("/hh/applications/dispatch", r.applications.Dispatch)

		internal.GET("/quota", r.quota.View)
		internal.GET("/subscriptions/current", r.subscriptions.Current)

		internal.GET("/referrals/me", r.referrals.Me)
		internal.POST("/referrals/generate", r.referrals.Generate)
		internal.POST("/referrals/track", r.referrals.Track)
	}
}

// GetEngine returns the underlying Gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
