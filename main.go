package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"grand-hotel-backend/config"
	"grand-hotel-backend/controllers"
	"grand-hotel-backend/repositories"
	"grand-hotel-backend/routes"
	"grand-hotel-backend/services"
	"grand-hotel-backend/storage/cloudinary"
	"grand-hotel-backend/storage/redis"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Printf("✅ Database connection established (%s) and migrations applied.", cfg.DBDriver)

	var media services.MediaStore
	if client, err := cloudinary.NewClient(cfg.Cloudinary); err != nil {
		log.Printf("⚠️  Cloudinary disabled: %v", err)
		media = cloudinary.Disabled{Folder: cfg.Cloudinary.Folder}
	} else {
		media = client
	}

	var cache services.RoomCache
	if rc := redis.NewClient(cfg.Redis); rc != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(pingCtx).Err(); err != nil {
			log.Printf("⚠️  Redis unreachable, room cache disabled: %v", err)
		} else {
			cache = redis.NewRoomCache(rc, cfg.Redis.TTL)
			log.Println("✅ Redis room cache enabled.")
		}
		cancel()
	}

	// Initialize repositories and services
	roomRepo := repositories.NewRoomRepository(db)
	userRepo := repositories.NewUserRepository(db)

	roomService := services.NewRoomService(roomRepo, media, cache)
	exportService := services.NewExportService(roomRepo)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiresIn)

	// Initialize controllers
	exposeErrors := !cfg.IsProduction()
	roomController := controllers.NewRoomController(roomService, exportService, exposeErrors)
	authController := controllers.NewAuthController(authService, exposeErrors)

	router := routes.SetupRouter(roomController, authController, authService, cfg.CORSOrigins)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
