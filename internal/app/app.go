package app

import (
	"context"
	"strconv"
	"time"

	"clubhub/internal/config"
	"clubhub/internal/db"
	"clubhub/internal/handlers"
	"clubhub/internal/logger"
	"clubhub/internal/repository"
	"clubhub/internal/routes"
	"clubhub/internal/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// tokenRetention — сколько держим погашенные и истёкшие токены входа
// в базе перед чисткой (для разбора инцидентов).
const tokenRetention = 30 * 24 * time.Hour

func InitApp(cfg *config.Config) (*mux.Router, error) {
	conn, err := db.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}

	// Репозитории
	userRepo := repository.NewUserRepository(conn)
	tokenRepo := repository.NewLoginTokenRepository(conn)
	settingRepo := repository.NewSettingRepository(conn)
	scheduleRepo := repository.NewScheduleRepository(conn)
	importLogRepo := repository.NewImportLogRepository(conn)

	// Сервисы
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(
		tokenRepo,
		userRepo,
		emailService,
		cfg.FrontendURL,
		loginTokenTTL(cfg),
		cfg.JWTSecret,
		accessTokenTTL(cfg),
	)
	userService := services.NewUserService(userRepo)
	csvService := services.NewMembersCSVService(userRepo, importLogRepo)
	settingService := services.NewSettingService(settingRepo)
	scheduleService := services.NewScheduleService(scheduleRepo)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	csvHandler := handlers.NewCSVHandler(csvService)
	settingHandler := handlers.NewSettingHandler(settingService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	systemHandler := handlers.NewSystemHandler(conn)
	emailHandler := handlers.NewEmailHandler(emailService)

	// Воркеры отправки почты
	for i := 0; i < 2; i++ {
		services.StartEmailWorker(emailService)
	}

	// Периодическая чистка токенов входа
	StartTokenSweeper(authService)

	// Маршруты
	router := mux.NewRouter()
	routes.InitRoutes(router, cfg.JWTSecret, authHandler, userHandler, csvHandler, settingHandler, scheduleHandler, systemHandler, emailHandler)

	return router, nil
}

// StartTokenSweeper раз в час удаляет давно истёкшие токены входа.
func StartTokenSweeper(authService *services.AuthService) {
	t := time.NewTicker(1 * time.Hour)
	go func() {
		for range t.C {
			deleted, err := authService.PurgeExpiredTokens(context.Background(), tokenRetention)
			if err != nil {
				logger.Log.Error("Чистка токенов входа не удалась", zap.Error(err))
				continue
			}
			if deleted > 0 {
				logger.Log.Info("Токены входа почищены", zap.Int64("deleted", deleted))
			}
		}
	}()
}

func loginTokenTTL(cfg *config.Config) time.Duration {
	minutes, err := strconv.Atoi(cfg.LoginTokenTTLMin)
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func accessTokenTTL(cfg *config.Config) time.Duration {
	d, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil || d <= 0 {
		d = 24 * time.Hour
	}
	return d
}
