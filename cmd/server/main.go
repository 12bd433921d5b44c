package main // Entry point package

import (
	"log"      // Logging library
	"net/http" // Shared HTTP client for the weather gateway
	"time"     // Outbound request timeout

	"github.com/joho/godotenv"    // Optional .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/weather-dashboard/internal/config"
	"github.com/iliyamo/weather-dashboard/internal/database"
	"github.com/iliyamo/weather-dashboard/internal/handler"
	"github.com/iliyamo/weather-dashboard/internal/middleware"
	"github.com/iliyamo/weather-dashboard/internal/repository"
	"github.com/iliyamo/weather-dashboard/internal/router"
	queue_publisher "github.com/iliyamo/weather-dashboard/internal/service"
	"github.com/iliyamo/weather-dashboard/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()                  // Load environment config (fatal on missing vars)
	rlCfg := config.LoadRateLimitConfig() // Per-capability request budgets

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional: when absent the rate limiter falls back to the
	// in-process counter map and upstream responses are not cached.
	rdb := config.NewRedisClient()
	var limiter middleware.Limiter
	if rdb != nil {
		limiter = middleware.NewRedisLimiter(rdb)
		log.Printf("rate limiting backed by redis")
	} else {
		limiter = middleware.NewMemoryLimiter()
		log.Printf("redis unavailable, rate limiting in-process only")
	}

	gateway, err := weather.NewClient(cfg.OpenWeatherKey,
		&http.Client{Timeout: 10 * time.Second}, rdb)
	if err != nil {
		log.Fatalf("weather gateway init failed: %v", err)
	}

	users := repository.NewUserRepo(db)
	favorites := repository.NewFavoriteRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	weatherHandler := handler.NewWeatherHandler(gateway)
	favoriteHandler := handler.NewFavoriteHandler(favorites, queue_publisher.NewPublisher())

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, limiter, rlCfg, cfg.JWTSecret)
	router.RegisterAPI(e, weatherHandler, favoriteHandler, limiter, rlCfg, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
