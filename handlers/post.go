package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"masterboxer.com/project-micro-feed/models"
)

type FeedGetter interface {
	GetFeed(ctx context.Context) ([]models.FeedEntry, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func GetFeed(svc FeedGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := svc.GetFeed(r.Context())
		if err != nil {
			http.Error(w, "Failed to fetch feed", http.StatusInternalServerError)
			log.Printf("GetFeed error: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(feed); err != nil {
			log.Printf("GetFeed encode error: %v", err)
		}
	}
}

func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(ctx); err != nil {
			log.Printf("Health ping error: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
