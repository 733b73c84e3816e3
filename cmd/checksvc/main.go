package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"

	config "github.com/avvvet/cardcheck-services/configs"
	"github.com/avvvet/cardcheck-services/internal/batch"
	"github.com/avvvet/cardcheck-services/internal/binlist"
	"github.com/avvvet/cardcheck-services/internal/checksvc/broker"
	svcconfig "github.com/avvvet/cardcheck-services/internal/checksvc/config"
	pg "github.com/avvvet/cardcheck-services/internal/checksvc/db"
	handlers "github.com/avvvet/cardcheck-services/internal/checksvc/handlers"
	"github.com/avvvet/cardcheck-services/internal/checksvc/service"
	"github.com/avvvet/cardcheck-services/internal/checksvc/store"
	mongodb "github.com/avvvet/cardcheck-services/internal/db"
	nats "github.com/avvvet/cardcheck-services/internal/nats"
	"github.com/avvvet/cardcheck-services/internal/paypal"
	"github.com/avvvet/cardcheck-services/internal/probe"
	log "github.com/sirupsen/logrus"
)

const SERVICE_NAME = "check"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service")
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
}

func main() {
	cfg, err := svcconfig.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	payClient, err := paypal.NewClient(cfg.PayPal)
	if err != nil {
		log.Fatalf("Failed to configure payment processor: %v", err)
	}

	var bins service.BinResolver = binlist.NewResolver(cfg.Binlist)

	// mongo lookup journal, optional
	if cfg.MongoURI != "" {
		mdb, disconnect, err := mongodb.ConnectToDB(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer disconnect(context.Background())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := mongodb.CreateTTLIndexForCollection(ctx, mdb, store.LookupCollection); err != nil {
			log.Warnf("bin lookup journal index: %v", err)
		}
		cancel()

		bins = service.NewJournaledResolver(bins, store.NewLookupStore(mdb), instanceId)
		log.Printf("mongo connection established successfully, journaling bin lookups")
	}

	prober := probe.New(payClient, bins)
	processor := batch.NewProcessor(prober, batch.Options{Workers: cfg.Workers})

	reportStore, err := store.NewReportStore(cfg.TempDir)
	if err != nil {
		log.Fatalf("Failed to prepare report dir: %v", err)
	}

	checkService := service.NewCheckService(prober, bins)
	batchService := service.NewBatchService(processor, reportStore)

	// pg connection, optional
	if cfg.DBUrl != "" {
		dbpool, err := pg.Connect(cfg.DBUrl)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer pg.ClosePool()

		runStore := store.NewBatchRunStore(dbpool)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = runStore.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to prepare batch_runs table: %v", err)
		}
		batchService.WithRunStore(runStore)
		log.Printf("pg connection established successfully")
	}

	// Connect to NATS, optional
	if cfg.NatsURL != "" {
		n, err := nats.Connect(cfg.NatsURL, SERVICE_NAME+"_service_"+instanceId)
		if err != nil {
			log.Fatalf("Error: unable to connect to NATS server %v", err)
		}
		defer n.Conn.Close()
		log.Printf("NATS connection established successfully %s", n.Url)

		batchService.WithEvents(broker.NewBroker(n.Conn, instanceId))
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(c.Handler)

	// to protect the payment processor from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(cfg.Port, checkService, batchService, reportStore)
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	// batch uploads can take minutes, reads and writes get the same budget
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
