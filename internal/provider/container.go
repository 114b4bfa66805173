package provider

import (
	"github.com/findesk/findesk-api/internal/cache"
	"github.com/findesk/findesk-api/internal/config"
	"github.com/findesk/findesk-api/internal/logger"
	"github.com/findesk/findesk-api/internal/models"
	"github.com/findesk/findesk-api/internal/payment/razorpay"
	"github.com/findesk/findesk-api/internal/queue"
	"github.com/findesk/findesk-api/internal/repository"
	"github.com/findesk/findesk-api/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	GatewayCfg  *razorpay.Config

	// Repositories
	PaymentRepo   repository.PaymentRepository
	StudentRepo   repository.StudentRepository
	LibraryRepo   repository.LibraryRepository
	LibrarianRepo repository.LibrarianRepository

	// Services
	PaymentService *service.PaymentService
	EmailService   *service.EmailService
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

	gatewayCfg := &razorpay.Config{
		KeyID:              cfg.Razorpay.KeyID,
		KeySecret:          cfg.Razorpay.KeySecret,
		WebhookSecret:      cfg.Razorpay.WebhookSecret,
		APIBaseURL:         cfg.Razorpay.APIBaseURL,
		TimeoutMS:          cfg.Razorpay.TimeoutMS,
		PlatformFeePercent: cfg.Razorpay.PlatformFeePercent,
	}
	gatewayCfg.Normalize()

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		GatewayCfg:  gatewayCfg,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.StudentRepo = repository.NewStudentRepository(db)
	c.LibraryRepo = repository.NewLibraryRepository(db)
	c.LibrarianRepo = repository.NewLibrarianRepository(db)
}

func (c *Container) initServices() {
	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.PaymentService = service.NewPaymentService(c.PaymentRepo, c.StudentRepo, c.LibraryRepo, c.LibrarianRepo, c.GatewayCfg, c.QueueClient)
}
