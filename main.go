package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/payments"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/kafka"
	"storefront/pkg/rabbitmq"
	"storefront/pkg/redisstore"
)

func main() {
	// --- Configuration ---
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using the environment")
	}
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := repositories.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := repositories.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	addressRepo := repositories.NewGORMAddressRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Order events ---
	emitter, closeEvents, err := newEmitter(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s events backend: %v", cfg.EventsBackend, err)
	}
	defer closeEvents.Close()

	// --- Services ---
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo, productRepo, payments.NewStripeGateway(cfg.StripeSecretKey), emitter, cfg.Currency)

	seed, err := catalog.Default()
	if err != nil {
		log.Fatalf("Failed to load seed catalog: %v", err)
	}
	if _, err := productService.SeedIfEmpty(context.Background(), seed); err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	sessionStorage, err := newSessionStorage(cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize %s session store: %v", cfg.SessionStore, err)
	}
	defer sessionStorage.Close()

	app := server.New(cfg, server.Deps{
		Auth:           services.NewAuthService(userRepo),
		Accounts:       services.NewAccountService(userRepo, addressRepo),
		Products:       productService,
		Orders:         orderService,
		Webhooks:       payments.NewWebhookVerifier(cfg.StripeWebhookSecret),
		SessionStorage: sessionStorage,
	})
	if cfg.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is empty, webhook signatures are not verified")
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newEmitter connects the configured broker. The emitter is nil when events
// are disabled.
func newEmitter(cfg *config.Config) (services.EventEmitter, io.Closer, error) {
	switch cfg.EventsBackend {
	case "rabbitmq":
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Publishing order events to RabbitMQ exchange %s", rabbitmq.DefaultExchange)
		return events.NewEmitter(client, "storefront"), client, nil
	case "kafka":
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		log.Printf("Publishing order events to Kafka brokers %v", cfg.KafkaBrokers)
		return events.NewEmitter(producer, "storefront"), producer, nil
	default:
		return nil, nopCloser{}, nil
	}
}

// newSessionStorage returns the configured fiber.Storage for sessions.
func newSessionStorage(cfg *config.Config, db *gorm.DB) (fiber.Storage, error) {
	if cfg.SessionStore == "redis" {
		storage, err := redisstore.New(cfg.RedisAddr, "storefront:session:")
		if err != nil {
			return nil, err
		}
		log.Printf("Storing sessions in Redis at %s", cfg.RedisAddr)
		return storage, nil
	}
	return repositories.NewSessionStorage(db), nil
}
