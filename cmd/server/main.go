package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/nkhandelwal3/sauda-backend/internal/config"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/mongodb"
	"github.com/nkhandelwal3/sauda-backend/internal/repository/sheets"
	"github.com/nkhandelwal3/sauda-backend/internal/scheduler"
	"github.com/nkhandelwal3/sauda-backend/internal/server/handlers"
	"github.com/nkhandelwal3/sauda-backend/internal/server/router"
	analyticssvc "github.com/nkhandelwal3/sauda-backend/internal/service/analytics"
	dealsvc "github.com/nkhandelwal3/sauda-backend/internal/service/deals"
	exportsvc "github.com/nkhandelwal3/sauda-backend/internal/service/export"
	ledgersvc "github.com/nkhandelwal3/sauda-backend/internal/service/ledger"
	lotsvc "github.com/nkhandelwal3/sauda-backend/internal/service/lots"
	reconcilesvc "github.com/nkhandelwal3/sauda-backend/internal/service/reconcile"
	shipmentsvc "github.com/nkhandelwal3/sauda-backend/internal/service/shipments"
	"github.com/nkhandelwal3/sauda-backend/pkg/clients/notify"
	"github.com/nkhandelwal3/sauda-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoClient, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb client", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	brokerStore := mongoClient.Brokers()
	dealStore := mongoClient.Deals()
	lotStore := mongoClient.Lots()
	shipmentStore := mongoClient.Shipments()
	ledgerStore := mongoClient.Ledger()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL)
		baseLogger.Info("status webhook notifier enabled")
	} else {
		baseLogger.Warn("status webhook url missing, notifications disabled")
	}

	lotLedger := lotsvc.NewService(lotStore, shipmentStore, baseLogger.Named("svc.lots"))
	shipmentJournal := shipmentsvc.NewService(shipmentStore, dealStore, lotLedger, notifier, baseLogger.Named("svc.shipments"))
	dealService := dealsvc.NewService(dealStore, lotStore, shipmentStore, brokerStore, notifier, baseLogger.Named("svc.deals"))
	brokerLedger := ledgersvc.NewService(brokerStore, ledgerStore, dealStore, shipmentStore, lotLedger, baseLogger.Named("svc.ledger"))
	analyticsService := analyticssvc.NewService(dealStore, lotStore, shipmentStore, baseLogger.Named("svc.analytics"))
	reconciler := reconcilesvc.NewService(shipmentStore, lotStore, lotLedger, baseLogger.Named("svc.reconcile"))

	var exporter *exportsvc.Service
	var exportHandler *handlers.ExportHandler
	if cfg.Sheets.Enabled() {
		sheetRepo, err := sheets.NewSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = exportsvc.NewService(sheetRepo, brokerStore, ledgerStore, dealStore, analyticsService, baseLogger.Named("svc.export"))
		exportHandler = handlers.NewExportHandler(exporter, baseLogger.Named("handlers.export"))
		baseLogger.Info("spreadsheet export enabled")
	} else {
		baseLogger.Warn("sheets settings missing, spreadsheet export disabled")
	}

	engine := router.New(cfg.Server, router.Handlers{
		Brokers:   handlers.NewBrokerHandler(brokerLedger, baseLogger.Named("handlers.brokers")),
		Deals:     handlers.NewDealHandler(dealService, brokerLedger, analyticsService, baseLogger.Named("handlers.deals")),
		Lots:      handlers.NewLotHandler(lotLedger, baseLogger.Named("handlers.lots")),
		Shipments: handlers.NewShipmentHandler(shipmentJournal, baseLogger.Named("handlers.shipments")),
		Export:    exportHandler,
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reconciler, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
