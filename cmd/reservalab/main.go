package main

import (
	"context"
	"database/sql"

	config "github.com/davicafu/reservalab/internal/config"

	bookingApp "github.com/davicafu/reservalab/internal/booking/application"
	bookingDomain "github.com/davicafu/reservalab/internal/booking/domain"
	bookingHttp "github.com/davicafu/reservalab/internal/booking/infra/inbound/http"
	bookingMongo "github.com/davicafu/reservalab/internal/booking/infra/outbound/db/mongodb"
	bookingPostgres "github.com/davicafu/reservalab/internal/booking/infra/outbound/db/postgres"
	bookingSqlite "github.com/davicafu/reservalab/internal/booking/infra/outbound/db/sqlite"
	eventApp "github.com/davicafu/reservalab/internal/event/application"
	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
	eventHttp "github.com/davicafu/reservalab/internal/event/infra/inbound/http"
	eventCache "github.com/davicafu/reservalab/internal/event/infra/outbound/cache"
	eventMongo "github.com/davicafu/reservalab/internal/event/infra/outbound/db/mongodb"
	eventPostgres "github.com/davicafu/reservalab/internal/event/infra/outbound/db/postgres"
	eventSqlite "github.com/davicafu/reservalab/internal/event/infra/outbound/db/sqlite"
	"github.com/davicafu/reservalab/internal/jobs"
	"github.com/davicafu/reservalab/internal/notify"
	sharedCache "github.com/davicafu/reservalab/internal/shared/infra/platform/cache"
	"github.com/davicafu/reservalab/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	// _ "github.com/mattn/go-sqlite3" // requires gcc
	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()

	// ---------------- DB ----------------
	var eventRepo eventDomain.EventRepository
	var bookingRepo bookingDomain.BookingRepository
	var bookingLookup eventDomain.BookingLookup

	switch {
	case cfg.MongoURI != "":
		log.Info("🍃 Usando MongoDB como almacenamiento")
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer client.Disconnect(ctx)

		eventRepoMongo, err := eventMongo.NewEventRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB event repo", zap.Error(err))
		}
		bookingRepoMongo, err := bookingMongo.NewBookingRepoMongoDB(ctx, client, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB booking repo", zap.Error(err))
		}
		eventRepo = eventRepoMongo
		bookingRepo = bookingRepoMongo
		bookingLookup = bookingRepoMongo

	case cfg.LocalDeployment:
		log.Info("💾 Usando SQLite como almacenamiento local")
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			log.Fatal("failed to open SQLite", zap.Error(err))
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping SQLite", zap.Error(err))
		}
		if err := eventSqlite.InitSQLite(db); err != nil {
			log.Fatal("failed to initialize SQLite", zap.Error(err))
		}
		if err := bookingSqlite.InitSQLite(db); err != nil {
			log.Fatal("failed to initialize SQLite", zap.Error(err))
		}

		eventRepo = eventSqlite.NewEventRepoSQLite(db)
		bookingRepoSQLite := bookingSqlite.NewBookingRepoSQLite(db)
		bookingRepo = bookingRepoSQLite
		bookingLookup = bookingRepoSQLite

	default:
		log.Info("🐘 Usando PostgreSQL como almacenamiento")
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatal("failed to open PostgreSQL", zap.Error(err))
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal("failed to ping PostgreSQL", zap.Error(err))
		}
		if err := eventPostgres.InitPostgres(db); err != nil {
			log.Fatal("failed to initialize PostgreSQL", zap.Error(err))
		}
		if err := bookingPostgres.InitPostgres(db); err != nil {
			log.Fatal("failed to initialize PostgreSQL", zap.Error(err))
		}

		eventRepo = eventPostgres.NewEventRepoPostgres(db)
		bookingRepoPostgres := bookingPostgres.NewBookingRepoPostgres(db)
		bookingRepo = bookingRepoPostgres
		bookingLookup = bookingRepoPostgres
	}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = eventCache.NewInMemoryEventCache(cfg.CacheTTL, 3*cfg.CacheTTL)
	} else {
		cacheInstance = eventCache.NewRedisEventCache(rdb, cfg.CacheTTL)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ------------- Notificaciones -------------
	var deliverer notify.Deliverer
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka para entregar notificaciones")
		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		defer writer.Close()
		deliverer = notify.NewKafkaDeliverer(writer, log)
	} else {
		log.Info("📧 Entregando notificaciones por log (simulación)")
		deliverer = notify.NewLogDeliverer(log)
	}

	dispatcher := notify.NewDispatcher(deliverer, log)
	queue := jobs.NewQueue(dispatcher, cfg.JobSendDelay, log)

	// --------------- Servicios --------------
	eventService := eventApp.NewEventService(eventRepo, bookingLookup, cacheInstance, queue, log)
	bookingService := bookingApp.NewBookingService(bookingRepo, eventRepo, cacheInstance, queue, log)

	// ---------------- HTTP ----------------
	eventHandler := eventHttp.NewEventHandler(eventService)
	bookingHandler := bookingHttp.NewBookingHandler(bookingService)
	router := gin.Default()
	eventHttp.RegisterEventRoutes(router, eventHandler)
	bookingHttp.RegisterBookingRoutes(router, bookingHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
