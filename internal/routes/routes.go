package routes

import (
	"clubhub/internal/handlers"
	"clubhub/internal/middleware"

	"github.com/gorilla/mux"
)

func InitRoutes(
	router *mux.Router,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	csvHandler *handlers.CSVHandler,
	settingHandler *handlers.SettingHandler,
	scheduleHandler *handlers.ScheduleHandler,
	systemHandler *handlers.SystemHandler,
	emailHandler *handlers.EmailHandler,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Recoverer)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/health", systemHandler.Health).Methods("GET")
	api.HandleFunc("/status", systemHandler.Status).Methods("GET")

	api.HandleFunc("/auth/send-login-link", authHandler.SendLoginLink).Methods("POST")
	api.HandleFunc("/auth/validate-token", authHandler.ValidateToken).Methods("POST")

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(jwtSecret))

	protected.HandleFunc("/users", userHandler.GetUsers).Methods("GET")
	protected.HandleFunc("/users/assignable", userHandler.GetAssignableUsers).Methods("GET")
	protected.HandleFunc("/users/{id:[0-9]+}", userHandler.GetUser).Methods("GET")

	protected.HandleFunc("/settings", settingHandler.GetSettings).Methods("GET")
	protected.HandleFunc("/settings/{key}", settingHandler.GetSetting).Methods("GET")

	protected.HandleFunc("/schedules/current", scheduleHandler.GetCurrent).Methods("GET")
	protected.HandleFunc("/schedules/next", scheduleHandler.GetNext).Methods("GET")

	// --- Только для админа ---
	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.OnlyRole("admin"))

	admin.HandleFunc("/users", userHandler.CreateUser).Methods("POST")
	admin.HandleFunc("/users/import", csvHandler.ImportUsers).Methods("POST")
	admin.HandleFunc("/users/export/csv", csvHandler.ExportUsersCSV).Methods("GET")
	admin.HandleFunc("/users/{id:[0-9]+}", userHandler.UpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id:[0-9]+}", userHandler.DeleteUser).Methods("DELETE")

	admin.HandleFunc("/settings", settingHandler.UpdateSettings).Methods("PUT")
	admin.HandleFunc("/settings/{key}", settingHandler.UpdateSetting).Methods("PUT")

	admin.HandleFunc("/schedules/next", scheduleHandler.CreateNext).Methods("POST")
	admin.HandleFunc("/schedules/assignments/{id:[0-9]+}", scheduleHandler.UpdateAssignment).Methods("PUT")
	admin.HandleFunc("/schedules/promote", scheduleHandler.Promote).Methods("POST")

	admin.HandleFunc("/maintenance/import-logs", csvHandler.GetImportLogs).Methods("GET")
	admin.HandleFunc("/maintenance/clear-import-logs", csvHandler.ClearImportLogs).Methods("POST")

	admin.HandleFunc("/email/test", emailHandler.SendTest).Methods("POST")
}
