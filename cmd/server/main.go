package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"masterboxer.com/project-micro-feed/database"
	"masterboxer.com/project-micro-feed/routes"
	"masterboxer.com/project-micro-feed/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	cfg, err := database.LoadConfig()
	if err != nil {
		log.Fatal("Server: ", err)
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatal("Server: DB connection failed: ", err)
	}
	defer db.Close()

	if os.Getenv("MIGRATIONS") != "off" {
		if err := database.MigrationsUp(db); err != nil {
			log.Fatal("Server: migrations failed: ", err)
		}
	}

	store := database.NewStore(db)
	feed := services.NewFeedService(store)

	router := routes.CreatePostRoutes(feed, store, []byte(os.Getenv("JWT_SECRET")), mux.NewRouter())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
