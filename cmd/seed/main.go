package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"marineworks/internal/config"
	"marineworks/internal/database"
	"marineworks/internal/domain"
	"marineworks/internal/modules/workorder"
	"marineworks/internal/repository"
	"marineworks/internal/store"
)

// Seeds a demo marina: clients, vessels, equipment and a handful of
// work orders spread across the board columns. Run it against a fresh
// database; it does not clean existing data.
func main() {
	_ = godotenv.Load()

	log := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	nodeStore, err := store.NewNodeStore(db, cfg.TenantID, log)
	if err != nil {
		log.WithError(err).Fatal("store init failed")
	}

	clientRepo := repository.NewClientRepository(nodeStore)
	vesselRepo := repository.NewVesselRepository(nodeStore)
	equipmentRepo := repository.NewEquipmentRepository(nodeStore)
	workOrderRepo := repository.NewWorkOrderRepository(nodeStore, log)
	historyRepo := repository.NewHistoryRepository(nodeStore)
	engine := workorder.NewService(workOrderRepo, historyRepo, log)

	ctx := context.Background()

	log.Info("creating clients...")
	marina := &domain.Client{
		Name:        "Marina Porto Azul",
		ContactName: "Carla Mendes",
		Phone:       "+55 11 99999-0001",
		Email:       "ops@portoazul.example",
	}
	iate := &domain.Client{
		Name:        "Iate Clube Santos",
		ContactName: "Roberto Lima",
		Phone:       "+55 13 98888-0002",
	}
	for _, c := range []*domain.Client{marina, iate} {
		if _, err := clientRepo.Create(ctx, c); err != nil {
			log.WithError(err).Fatal("client seed failed")
		}
	}

	log.Info("creating vessels and equipment...")
	santaMaria := &domain.Vessel{ClientID: marina.ID, Name: "Santa Maria", Registration: "BR-SP-4471", Type: "sailboat"}
	albatroz := &domain.Vessel{ClientID: iate.ID, Name: "Albatroz", Registration: "BR-SP-9012", Type: "motor yacht"}
	for _, v := range []*domain.Vessel{santaMaria, albatroz} {
		if _, err := vesselRepo.Create(ctx, v); err != nil {
			log.WithError(err).Fatal("vessel seed failed")
		}
	}

	bilgePump := &domain.Equipment{ClientID: marina.ID, VesselID: santaMaria.ID, Name: "Bilge pump", Model: "Rule 2000", Serial: "RP-2231", SystemType: "plumbing"}
	radar := &domain.Equipment{ClientID: iate.ID, VesselID: albatroz.ID, Name: "Radar", Model: "Furuno 1815", Serial: "FR-8874", SystemType: "electronics"}
	generator := &domain.Equipment{ClientID: iate.ID, VesselID: albatroz.ID, Name: "Generator", Model: "Onan 7kW", Serial: "ON-5520", SystemType: "electrical"}
	for _, e := range []*domain.Equipment{bilgePump, radar, generator} {
		if _, err := equipmentRepo.Create(ctx, e); err != nil {
			log.WithError(err).Fatal("equipment seed failed")
		}
	}

	log.Info("creating work orders...")
	seedOrders := []struct {
		wo     *domain.WorkOrder
		target domain.WorkOrderStatus
		note   string
		report string
	}{
		{
			wo: &domain.WorkOrder{
				ClientID:       marina.ID,
				VesselID:       santaMaria.ID,
				EquipmentID:    bilgePump.ID,
				ReportedDefect: "bilge pump not priming, water accumulating",
				Priority:       domain.PriorityCritical,
			},
		},
		{
			wo: &domain.WorkOrder{
				ClientID:       iate.ID,
				VesselID:       albatroz.ID,
				EquipmentID:    radar.ID,
				ReportedDefect: "radar display flickers at high RPM",
				Priority:       domain.PriorityMedium,
			},
			target: domain.StatusAwaitingPart,
			note:   "magnetron on order, ETA two weeks",
		},
		{
			wo: &domain.WorkOrder{
				ClientID:       iate.ID,
				VesselID:       albatroz.ID,
				EquipmentID:    generator.ID,
				ReportedDefect: "generator shuts down after 20 minutes",
				Priority:       domain.PriorityHigh,
			},
			target: domain.StatusInProgress,
		},
		{
			wo: &domain.WorkOrder{
				ClientID:       marina.ID,
				VesselID:       santaMaria.ID,
				ReportedDefect: "navigation lights dead on port side",
				Priority:       domain.PriorityLow,
			},
			target: domain.StatusDone,
			report: "replaced corroded wiring run and both lamp housings",
		},
	}

	for _, s := range seedOrders {
		id, err := engine.Create(ctx, s.wo)
		if err != nil {
			log.WithError(err).Fatal("work order seed failed")
		}
		if s.report != "" {
			if err := engine.Update(ctx, id, map[string]any{"serviceReport": s.report}); err != nil {
				log.WithError(err).Fatal("service report seed failed")
			}
		}
		if s.target != "" {
			if _, err := engine.Transition(ctx, id, s.target, s.note, "seed"); err != nil {
				log.WithError(err).Fatal("transition seed failed")
			}
		}
	}

	log.Info("seed completed")
}
