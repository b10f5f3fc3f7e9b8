package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"foodtue/internal/config"
	"foodtue/internal/database"
	"foodtue/internal/events"
	"foodtue/internal/handlers"
	"foodtue/internal/middleware"
	"foodtue/internal/models"
	"foodtue/internal/repositories"
	"foodtue/internal/services"
	"foodtue/pkg/idempotency"
	"foodtue/pkg/kafka"
	"foodtue/pkg/rabbitmq"
)

// application is the wired HTTP server and the resources it owns.
type application struct {
	app     *fiber.App
	repos   repositories.Set
	rabbit  *rabbitmq.Client // nil unless EVENTS_DRIVER=rabbitmq
	closers []func() error
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	a := &application{}

	repos, err := a.openRepositories(ctx, cfg.Storage)
	if err != nil {
		a.close()
		return nil, err
	}
	a.repos = repos

	idem, err := a.openIdempotencyStore(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}

	publisher, err := a.openPublisher(cfg.Events)
	if err != nil {
		a.close()
		return nil, err
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(repos.Users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hotelService := services.NewHotelService(repos.Hotels, cfg.Auth.HotelJWTSecret, cfg.Auth.TokenTTL)
	cartService := services.NewCartService(repos.Carts, repos.Hotels)
	orderService := services.NewOrderService(repos, idem, publisher,
		services.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL})

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "foodtue",
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + handlers.IdempotencyHeader,
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello from the foodtue API")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"storage": cfg.Storage.Driver,
			"events":  cfg.Events.Driver,
		})
	})

	// --- API Routes ---
	cookies := handlers.CookieConfig{TTL: cfg.Auth.TokenTTL, Secure: cfg.Auth.CookieSecure}
	api := app.Group("/api")
	handlers.NewAuthHandler(authService, cookies).RegisterRoutes(api)
	handlers.NewHotelHandler(hotelService, cookies).RegisterRoutes(api)
	handlers.NewCartHandler(cartService, authService).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService, authService).RegisterRoutes(api)
	handlers.NewHotelOrderHandler(orderService, hotelService).RegisterRoutes(api)

	if cfg.SeedDemoData {
		seedDemoData(ctx, hotelService)
	}

	a.app = app
	return a, nil
}

func (a *application) openRepositories(ctx context.Context, cfg config.StorageConfig) (repositories.Set, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return repositories.NewMockRepositories(), nil

	case config.DriverMongo:
		db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return repositories.Set{}, err
		}
		a.closers = append(a.closers, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.Client().Disconnect(ctx)
		})
		log.Info().Str("database", cfg.MongoDatabase).Msg("connected to MongoDB")
		return repositories.NewMongoRepositories(db), nil

	default:
		db, err := database.OpenGORM(cfg.Driver, cfg.DSN)
		if err != nil {
			return repositories.Set{}, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return repositories.Set{}, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		a.closers = append(a.closers, sqlDB.Close)
		log.Info().Str("driver", cfg.Driver).Msg("connected to database")
		return repositories.NewGORMRepositories(db), nil
	}
}

func (a *application) openIdempotencyStore(ctx context.Context, cfg *config.Config) (idempotency.Store, error) {
	if cfg.RedisAddr == "" {
		return idempotency.NewMemoryStore(cfg.IdempotencyTTL), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, rdb.Close)
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	return idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL), nil
}

func (a *application) openPublisher(cfg config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case config.EventsRabbitMQ:
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return nil, err
		}
		a.rabbit = client
		publisher := events.NewRabbitPublisher(client)
		a.closers = append(a.closers, publisher.Close)
		return publisher, nil

	case config.EventsKafka:
		publisher := events.NewKafkaPublisher(kafka.NewWriter(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}))
		a.closers = append(a.closers, publisher.Close)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing order events to Kafka")
		return publisher, nil

	default:
		return events.NopPublisher{}, nil
	}
}

// close releases resources in reverse order of acquisition.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}
	a.closers = nil
}

// errorHandler answers errors that escaped the handlers, such as unknown
// routes and recovered panics.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code = fe.Code
		message = fe.Message
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"message": message})
}

// seedDemoData registers a demo hotel with a few dishes unless it exists.
func seedDemoData(ctx context.Context, hotels *services.HotelService) {
	hotel := &models.Hotel{
		Name:     "Demo Kitchen",
		Email:    "demo@foodtue.local",
		Password: "demo1234",
		City:     "Pune",
		Area:     "Kothrud",
	}
	err := hotels.Signup(ctx, hotel)
	if errors.Is(err, services.ErrEmailTaken) {
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to seed demo hotel")
		return
	}

	dishes := []models.Dish{
		{Name: "Veg Thali", Price: 180, Description: "Rice, dal, two sabzis and rotis"},
		{Name: "Misal Pav", Price: 90, Description: "Spicy sprout curry with pav"},
		{Name: "Mango Lassi", Price: 60},
	}
	for _, d := range dishes {
		if _, err := hotels.AddDish(ctx, hotel.Email, hotel.ID, d); err != nil {
			log.Error().Err(err).Str("dish", d.Name).Msg("failed to seed dish")
		}
	}
	log.Info().Str("hotel_id", hotel.ID).Msg("seeded demo hotel")
}
