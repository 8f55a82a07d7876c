package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"marineworks/internal/config"
	"marineworks/internal/database"
	"marineworks/internal/middleware"
	"marineworks/internal/modules/kanban"
	"marineworks/internal/modules/photos"
	"marineworks/internal/modules/reference"
	"marineworks/internal/modules/workorder"
	jwtsvc "marineworks/internal/pkg/jwt"
	"marineworks/internal/realtime"
	"marineworks/internal/repository"
	"marineworks/internal/storage"
	"marineworks/internal/store"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	nodeStore, err := store.NewNodeStore(db, cfg.TenantID, log)
	if err != nil {
		log.WithError(err).Fatal("store init failed")
	}
	objects := storage.NewLocalStorage(cfg.UploadsDir, cfg.StaticBase)

	clientRepo := repository.NewClientRepository(nodeStore)
	vesselRepo := repository.NewVesselRepository(nodeStore)
	equipmentRepo := repository.NewEquipmentRepository(nodeStore)
	workOrderRepo := repository.NewWorkOrderRepository(nodeStore, log)
	historyRepo := repository.NewHistoryRepository(nodeStore)

	workOrderService := workorder.NewService(workOrderRepo, historyRepo, log)
	kanbanService := kanban.NewService(workOrderService, clientRepo, vesselRepo, equipmentRepo, log)
	photoService := photos.NewService(workOrderRepo, objects, cfg.TenantID, log)

	hub := realtime.NewHub(nodeStore, log)

	r := gin.New()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS())
	r.Static(objects.StaticBase(), objects.BaseDir())

	v1 := r.Group("/api/v1")
	if cfg.JWTSecret != "" {
		v1.Use(middleware.Actor(jwtsvc.New(cfg.JWTSecret, cfg.TokenTTL)))
	} else {
		log.Warn("JWT_SECRET is empty, all actors are anonymous")
	}
	{
		reference.NewHandler(clientRepo, vesselRepo, equipmentRepo).RegisterRoutes(v1)
		workorder.NewHandler(workOrderService).RegisterRoutes(v1)
		kanban.NewHandler(kanbanService).RegisterRoutes(v1)
		photos.NewHandler(photoService).RegisterRoutes(v1)
	}

	r.GET("/ws", gin.WrapH(hub))

	log.WithField("port", cfg.Port).Info("marine work order service listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
