package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Mathu0718/online-todo-mathu/handlers"
	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/middleware"
	"github.com/Mathu0718/online-todo-mathu/repositories"
	"github.com/Mathu0718/online-todo-mathu/services"
	"github.com/Mathu0718/online-todo-mathu/sockets"
	"github.com/Mathu0718/online-todo-mathu/utils"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := os.Getenv("CLIENT_URL")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	logging.InitLogger()
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting todo-app service...")

	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoDBName == "" {
		mongoDBName = "todo_app"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	tasksCollection := client.Database(mongoDBName).Collection("tasks")
	usersCollection := client.Database(mongoDBName).Collection("users")

	notificationRepo, err := repositories.NewNotificationRepo()
	if err != nil {
		logging.Logger.Fatalf("Event ID: CASS_INIT_FAILED, Description: Failed to initialize notifications repository: %v", err)
	}
	defer notificationRepo.CloseSession()
	notificationRepo.CreateTable()

	hub := sockets.NewHub()

	mailBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "smtp-cb",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	taskRepo := repositories.NewTaskRepo(tasksCollection)
	userRepo := repositories.NewUserRepo(usersCollection)

	notificationService := services.NewNotificationService(notificationRepo, utils.SMTPMailer{}, mailBreaker, hub)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, notificationService)

	scanInterval := 5 * time.Minute
	if raw := os.Getenv("SCAN_INTERVAL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			scanInterval = parsed
		} else {
			logging.Logger.Warnf("Event ID: CONFIG_WARNING, Description: Invalid SCAN_INTERVAL %q, using default: %v", raw, err)
		}
	}
	scanner := services.NewDeadlineScanner(taskRepo, userRepo, notificationService, scanInterval)
	go scanner.Run(context.Background())

	taskHandler := handlers.NewTaskHandler(taskService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	userHandler := handlers.NewUserHandler(userService)
	authHandler := handlers.NewAuthHandler(userService)
	socketHandler := handlers.NewSocketHandler(hub)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Todo service is running"))
	}).Methods("GET")
	r.HandleFunc("/api/auth/external", authHandler.ExternalLogin).Methods("POST")
	r.HandleFunc("/ws", socketHandler.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)
	api.HandleFunc("/auth/user", authHandler.CurrentUser).Methods("GET")
	api.HandleFunc("/tasks", taskHandler.GetTasks).Methods("GET")
	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods("POST")
	api.HandleFunc("/tasks/{id}", taskHandler.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.UpdateTask).Methods("PUT")
	api.HandleFunc("/tasks/{id}", taskHandler.DeleteTask).Methods("DELETE")
	api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	api.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods("PUT")
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkRead).Methods("PUT")
	api.HandleFunc("/users/by-emails", userHandler.GetUsersByEmails).Methods("POST")

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "5000"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
