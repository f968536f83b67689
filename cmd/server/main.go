package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/dang0801205/volunteerhub-sub000/internal/cache"
	"github.com/dang0801205/volunteerhub-sub000/internal/config"
	"github.com/dang0801205/volunteerhub-sub000/internal/database"
	"github.com/dang0801205/volunteerhub-sub000/internal/handler"
	"github.com/dang0801205/volunteerhub-sub000/internal/lock"
	"github.com/dang0801205/volunteerhub-sub000/internal/middleware"
	"github.com/dang0801205/volunteerhub-sub000/internal/notify"
	"github.com/dang0801205/volunteerhub-sub000/internal/repository"
	"github.com/dang0801205/volunteerhub-sub000/internal/router"
	"github.com/dang0801205/volunteerhub-sub000/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the event cache degrades to a no-op and
	// the rate limiter disables itself.
	rdb := config.NewRedisClient()
	var events cache.EventCache = cache.NewNoop()
	if rdb != nil {
		events = cache.NewRedis(rdb, cfg.EventCacheTTL, "event")
	} else {
		log.Println("redis unavailable; event cache and rate limiting disabled")
	}

	store := repository.NewStore(db)
	ledger := service.NewStatusLedger(lock.New(cfg.LockAcquire, cfg.LockHold), store, events)
	emitter := notify.NewEmitter()

	eventSvc := service.NewEventService(ledger, store, emitter)
	approvalSvc := service.NewApprovalService(ledger, store, emitter)
	registrationSvc := service.NewRegistrationService(ledger, store, emitter)
	attendanceSvc := service.NewAttendanceService(ledger, store, emitter)

	// The consumer is the stand-in delivery service; it reconnects on its
	// own and never takes the server down.
	go func() {
		if err := notify.StartConsumer(); err != nil {
			log.Printf("notify consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)),
		Events:        handler.NewEventHandler(eventSvc, approvalSvc, registrationSvc),
		Approvals:     handler.NewApprovalHandler(approvalSvc),
		Registrations: handler.NewRegistrationHandler(registrationSvc),
		Attendances:   handler.NewAttendanceHandler(attendanceSvc),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
