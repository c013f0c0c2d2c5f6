package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/mjfernandes/outlay/internal/db"
	"github.com/mjfernandes/outlay/internal/handlers"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	port := getenv("PORT", "4000")
	if os.Getenv("ACCESS_SECRET") == "" {
		log.Fatal("ACCESS_SECRET is required")
	}

	dbConn, err := db.Connect(db.FromEnv())
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	h := handlers.NewHandler(dbConn)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: h.Routes(),
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
