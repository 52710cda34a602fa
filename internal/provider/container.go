package provider

import (
	"github.com/dealsphere/dealsphere/internal/aiscore"
	"github.com/dealsphere/dealsphere/internal/authz"
	"github.com/dealsphere/dealsphere/internal/cache"
	"github.com/dealsphere/dealsphere/internal/config"
	"github.com/dealsphere/dealsphere/internal/logger"
	"github.com/dealsphere/dealsphere/internal/models"
	"github.com/dealsphere/dealsphere/internal/queue"
	"github.com/dealsphere/dealsphere/internal/repository"
	"github.com/dealsphere/dealsphere/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	DealRepo          repository.DealRepository
	DealClickRepo     repository.DealClickRepository
	SocialShareRepo   repository.SocialShareRepository
	UploadLogRepo     repository.UploadLogRepository
	BannerRepo        repository.BannerRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository
	DashboardRepo     repository.DashboardRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	CaptchaService    *service.CaptchaService
	Scorer            aiscore.Scorer
	IngestService     *service.IngestService
	BulkImportService *service.BulkImportService
	DealService       *service.DealService
	FeedService       *service.FeedService
	URLHealthService  *service.URLHealthService
	BannerService     *service.BannerService
	AuthzAuditService *service.AuthzAuditService
	DashboardService  *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.DealRepo = repository.NewDealRepository(db)
	c.DealClickRepo = repository.NewDealClickRepository(db)
	c.SocialShareRepo = repository.NewSocialShareRepository(db)
	c.UploadLogRepo = repository.NewUploadLogRepository(db)
	c.BannerRepo = repository.NewBannerRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)

	c.Scorer = aiscore.NewOpenAIScorer(c.Config.Scorer)
	c.IngestService = service.NewIngestService(c.Config, c.DealRepo, c.Scorer)
	c.BulkImportService = service.NewBulkImportService(c.Config, c.IngestService, c.UploadLogRepo)
	c.DealService = service.NewDealService(c.DealRepo, c.DealClickRepo, c.SocialShareRepo)
	c.FeedService = service.NewFeedService(c.Config, c.BulkImportService)
	c.URLHealthService = service.NewURLHealthService(c.Config, c.DealRepo)
	c.BannerService = service.NewBannerService(c.BannerRepo)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
