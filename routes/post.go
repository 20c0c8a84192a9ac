package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"masterboxer.com/project-micro-feed/handlers"
	"masterboxer.com/project-micro-feed/middleware"
)

// CreatePostRoutes registers the feed routes. A non-empty jwtSecret puts the
// feed behind bearer-token auth; /health stays open.
func CreatePostRoutes(svc handlers.FeedGetter, db handlers.Pinger, jwtSecret []byte, router *mux.Router) *mux.Router {
	router.Use(middleware.RequestID, middleware.Logging)

	var feed http.Handler = handlers.GetFeed(svc)
	if len(jwtSecret) > 0 {
		feed = middleware.RequireJWT(jwtSecret)(feed)
	}

	router.HandleFunc("/health", handlers.Health(db)).Methods("GET")
	router.Handle("/posts", feed).Methods("GET")
	router.Handle("/posts/", feed).Methods("GET")

	return router
}
