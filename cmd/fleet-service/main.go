package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/FleetDesk/FleetDesk/internal/common/config"
	"github.com/FleetDesk/FleetDesk/internal/common/db"
	"github.com/FleetDesk/FleetDesk/internal/common/logger"
	"github.com/FleetDesk/FleetDesk/internal/common/middleware"
	"github.com/FleetDesk/FleetDesk/internal/common/server"
	"github.com/FleetDesk/FleetDesk/internal/common/tracing"
	"github.com/FleetDesk/FleetDesk/internal/dealership"
	"github.com/FleetDesk/FleetDesk/internal/events"
	"github.com/FleetDesk/FleetDesk/internal/reservation"
	"github.com/FleetDesk/FleetDesk/internal/stats"
	"github.com/FleetDesk/FleetDesk/internal/user"
	"github.com/FleetDesk/FleetDesk/internal/vehicle"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "configs/fleet-service.json", "path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("tracing disabled: %v", err)
	} else {
		defer closer.Close()
	}

	gdb, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&dealership.Dealership{},
		&user.User{},
		&vehicle.Vehicle{},
		&reservation.Reservation{},
	); err != nil {
		log.Fatalf("migrate schema: %v", err)
	}

	pub, err := events.NewPublisher(cfg.Broker, log)
	if err != nil {
		log.Warnf("event publisher disabled: %v", err)
	}
	if pub != nil {
		defer pub.Close()
	}

	reservationRepo := reservation.NewRepo(gdb)
	vehicleRepo := vehicle.NewRepo(gdb)
	dealershipRepo := dealership.NewRepo(gdb)
	userRepo := user.NewRepo(gdb)
	statsRepo := stats.NewRepo(gdb)

	reservationSvc := reservation.NewService(reservationRepo, pub, log)
	vehicleSvc := vehicle.NewService(vehicleRepo, reservationRepo)
	dealershipSvc := dealership.NewService(dealershipRepo, vehicleRepo)
	userSvc := user.NewService(userRepo, cfg.Auth)

	router := buildRouter(cfg, log, reservationSvc, vehicleSvc, dealershipSvc, userSvc, statsRepo)

	if err := server.Run(cfg, log, router); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func buildRouter(
	cfg *config.Config,
	log logger.Logger,
	reservationSvc *reservation.Service,
	vehicleSvc *vehicle.Service,
	dealershipSvc *dealership.Service,
	userSvc *user.Service,
	statsSrc stats.Source,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.AccessLog(log),
		middleware.Tracing(cfg.Server.Name),
		middleware.RateLimit(middleware.NewTokenBucket(200, 100)),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(middleware.JWTAuth(cfg.Auth, log))

	adminOnly := middleware.RequireRole(user.RoleAdmin)

	user.NewHandler(userSvc).RegisterRoutes(api, adminOnly)
	vehicle.NewHandler(vehicleSvc).RegisterRoutes(api, adminOnly)
	dealership.NewHandler(dealershipSvc).RegisterRoutes(api, adminOnly)
	reservation.NewHandler(reservationSvc).RegisterRoutes(api, adminOnly)
	stats.NewHandler(statsSrc).RegisterRoutes(api, adminOnly)

	return router
}
