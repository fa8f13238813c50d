package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	config "github.com/davicafu/epidash/internal/config"
	epiApp "github.com/davicafu/epidash/internal/epidemic/application"
	epiDomain "github.com/davicafu/epidash/internal/epidemic/domain"
	epiHttp "github.com/davicafu/epidash/internal/epidemic/infra/inbound/http"
	epiMongo "github.com/davicafu/epidash/internal/epidemic/infra/outbound/db/mongodb"
	epiSqlite "github.com/davicafu/epidash/internal/epidemic/infra/outbound/db/sqlite"
	epiUpstream "github.com/davicafu/epidash/internal/epidemic/infra/outbound/upstream"
	infraEvents "github.com/davicafu/epidash/internal/infra/events"
	sharedBus "github.com/davicafu/epidash/internal/shared/platform/bus"
	sharedCache "github.com/davicafu/epidash/internal/shared/platform/cache"
	"github.com/davicafu/epidash/internal/shared/platform/obs"
	"github.com/davicafu/epidash/internal/shared/platform/upstream"
	traceApp "github.com/davicafu/epidash/internal/trace/application"
	traceHttp "github.com/davicafu/epidash/internal/trace/infra/inbound/http"
	traceUpstream "github.com/davicafu/epidash/internal/trace/infra/outbound/upstream"
	"github.com/davicafu/epidash/pkg/logger"

	_ "modernc.org/sqlite"
)

// ---------------- Main ----------------
func main() {
	logger.Init()          // inicializa zap
	log := logger.Logger() // obtiene logger estructurado
	defer log.Sync()       // flush buffers al salir

	ctx := context.Background()
	cfg := config.LoadConfig()

	metrics := obs.NewMetrics()

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria:", zap.Error(err))
		cacheInstance = sharedCache.NewInMemoryCache(time.Minute)
	} else {
		cacheInstance = sharedCache.NewRedisCache(rdb)
		log.Info("✅ Redis conectado, cache habilitado")
	}

	// ------------- OCR store ---------------
	var ocrStore epiDomain.OCRStore
	if cfg.LocalDeployment {
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			log.Fatal("failed to open SQLite", zap.Error(err))
		}
		defer db.Close()
		if err := epiSqlite.InitSQLite(db); err != nil {
			log.Fatal("failed to initialize SQLite", zap.Error(err))
		}
		ocrStore = epiSqlite.NewOCRRepoSQLite(db)
		log.Info("📦 Resultados de OCR en SQLite", zap.String("path", cfg.SQLitePath))
	} else {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURL))
		if err != nil {
			log.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoClient.Disconnect(ctx)
		repo, err := epiMongo.NewOCRRepoMongoDB(ctx, mongoClient, cfg.MongoDB)
		if err != nil {
			log.Fatal("failed to initialize MongoDB repo", zap.Error(err))
		}
		ocrStore = repo
		log.Info("📦 Resultados de OCR en MongoDB", zap.String("db", cfg.MongoDB))
	}

	// ----------- Proveedores upstream ------
	newsClient := epiUpstream.NewNewsClient(
		upstream.New("news", cfg.UpstreamTimeout, metrics), "", "")
	mapClient := epiUpstream.NewMapClient(
		upstream.New("map", cfg.UpstreamTimeout, metrics), "", cfg.MapKey, cfg.MapSecret)
	ocrClient := epiUpstream.NewOCRClient(
		upstream.New("ocr", cfg.UpstreamTimeout, metrics), "", cfg.OCRApiKey, cfg.OCRApiSecret)
	trackClient := traceUpstream.NewTrackClient(
		upstream.New("track", cfg.UpstreamTimeout, metrics), "")

	// ---------------- Events ---------------
	var eventPublisher sharedBus.EventPublisher
	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos")

		writer := kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   epiDomain.EpidemicTopic,
		})
		defer writer.Close()

		eventPublisher = infraEvents.NewKafkaPublisher(writer, log)
	} else {
		log.Info("⚡️Usando bus de eventos en memoria (canales de Go)")

		inMemoryBus := infraEvents.NewInMemoryEventBus(epiDomain.EpidemicTopic)
		eventPublisher = inMemoryBus

		// Oyente de cortesía: deja constancia de cada refresh en el log.
		refreshes := inMemoryBus.Subscribe(10)
		go func() {
			for evt := range refreshes {
				log.Info("🔄 Snapshot refrescado", zap.String("type", evt.Type))
			}
		}()
	}

	// --------------- Servicios -------------
	tokens := epiApp.NewTokenManager(cacheInstance, ocrClient, log)
	epidemicService := epiApp.NewEpidemicService(
		cacheInstance, newsClient, mapClient, ocrClient, ocrStore, tokens,
		eventPublisher, metrics, log)
	traceService := traceApp.NewTraceService(cacheInstance, trackClient, metrics, log)

	// ---------------- HTTP ----------------
	epidemicHandler := epiHttp.NewEpidemicHandler(epidemicService)
	traceHandler := traceHttp.NewTraceHandler(traceService)

	router := gin.Default()
	epiHttp.RegisterEpidemicRoutes(router, epidemicHandler)
	traceHttp.RegisterTraceRoutes(router, traceHandler)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	log.Info("🚀 Server running",
		zap.String("url", "http://localhost:"+cfg.HTTPPort),
	)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
