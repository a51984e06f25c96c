package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotwise/config"
	"slotwise/cron"
	"slotwise/database"
	bookingRepo "slotwise/database/repository/booking"
	calendarConnRepo "slotwise/database/repository/calendarconn"
	providerRepo "slotwise/database/repository/provider"
	slotRepo "slotwise/database/repository/slot"
	templateRepo "slotwise/database/repository/template"
	"slotwise/handlers"
	"slotwise/middleware"
	"slotwise/routes"
	"slotwise/services/availability"
	"slotwise/services/booking"
	"slotwise/services/calendar"
	"slotwise/services/meeting"
	"slotwise/services/notification"
	"slotwise/services/scheduling"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func main() {
	workerMode := flag.Bool("worker", false, "run the background task worker instead of the API server")
	flag.Parse()

	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitWebhookCache()

	// Repositories.
	provRepo := providerRepo.NewMongoProviderRepo()
	tmplRepo := templateRepo.NewMongoTemplateRepo()
	slRepo := slotRepo.NewMongoSlotRepo()
	bkRepo := bookingRepo.NewMongoBookingRepo()
	connRepo := calendarConnRepo.NewMongoCalendarConnRepo()

	ensureIndexes(logger, tmplRepo, slRepo, bkRepo, connRepo)

	if *workerMode {
		worker := &cron.EmailWorker{
			Bookings:  bkRepo,
			Providers: provRepo,
			Logger:    logger,
		}
		if err := worker.Run(); err != nil {
			logger.Sugar().Fatalf("worker exited: %v", err)
		}
		return
	}

	stripe.Key = config.AppConfig.StripeKey

	// Services.
	calendarAdapter := calendar.NewAdapter(connRepo, utils.GetCacheClient(), logger,
		time.Duration(config.AppConfig.CalendarTimeoutSecs)*time.Second)

	materializer := &scheduling.DefaultMaterializer{
		Templates: tmplRepo,
		Slots:     slRepo,
		Logger:    logger,
	}

	availabilityService := &availability.DefaultQueryService{
		Providers: provRepo,
		Slots:     slRepo,
		Bookings:  bkRepo,
		Calendar:  calendarAdapter,
		Logger:    logger,
	}

	bookingService := &booking.DefaultBookingService{
		Bookings:   bkRepo,
		Slots:      slRepo,
		Providers:  provRepo,
		Calendar:   calendarAdapter,
		Payments:   booking.NewStripeCheckout(logger),
		Meetings:   meeting.NewRESTProvisioner(),
		Notifier:   notification.NewAsynqNotifier(logger),
		Logger:     logger,
		FeePercent: config.AppConfig.PlatformFeePercent,
	}

	hb := &handlers.HandlerBundle{
		Availability:  availabilityService,
		Bookings:      bookingService,
		Materializer:  materializer,
		ProviderRepo:  provRepo,
		TemplateRepo:  tmplRepo,
		CalendarConns: connRepo,
		Logger:        logger,
	}

	handlers.RegisterOAuthConfigs(func(provider string) *oauth2.Config {
		switch provider {
		case "google":
			return calendar.GoogleOAuthConfig()
		case "microsoft":
			return calendar.MicrosoftOAuthConfig()
		default:
			return nil
		}
	})

	// Router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router, hb)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("forced shutdown: %v", err)
	}
	logger.Info("server stopped")
}

func ensureIndexes(logger *zap.Logger, tmpl templateRepo.TemplateRepository, sl slotRepo.SlotRepository, bk bookingRepo.BookingRepository, conns calendarConnRepo.CalendarConnRepository) {
	for name, fn := range map[string]func() error{
		"templates":            tmpl.EnsureIndexes,
		"slots":                sl.EnsureIndexes,
		"bookings":             bk.EnsureIndexes,
		"calendar_connections": conns.EnsureIndexes,
	} {
		if err := fn(); err != nil {
			logger.Sugar().Fatalf("failed to ensure %s indexes: %v", name, err)
		}
	}
}
