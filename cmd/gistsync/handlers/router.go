package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hairizuanbinnoorazman/project-viewer-sync/dispatcher"
	"github.com/hairizuanbinnoorazman/project-viewer-sync/logger"
)

// NewRouter wires the HTTP agent routes.
func NewRouter(d *dispatcher.Dispatcher, apiTokenHash string, log logger.Logger) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", HealthHandler).Methods(http.MethodGet)

	messageHandler := NewMessageHandler(d, log)
	authMiddleware := NewAuthMiddleware(apiTokenHash, log)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMiddleware.Handler)
	apiRouter.HandleFunc("/messages", messageHandler.Handle).Methods(http.MethodPost)

	return router
}
