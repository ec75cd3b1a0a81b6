package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/cheahjs/leangen/internal/imageapi"
	"github.com/cheahjs/leangen/internal/upload"
)

type Router struct {
	router         *mux.Router
	handler        http.Handler
	images         Images
	spool          *upload.Spool
	model          string
	maxUploadBytes int64
}

// Settings holds the per-deployment knobs of the relay handler.
type Settings struct {
	Model          string
	MaxUploadBytes int64
}

func NewRouter(images Images, spool *upload.Spool, settings Settings, logger zerolog.Logger) *Router {
	if settings.Model == "" {
		settings.Model = imageapi.DefaultModel
	}

	r := mux.NewRouter()
	router := &Router{
		router:         r,
		images:         images,
		spool:          spool,
		model:          settings.Model,
		maxUploadBytes: settings.MaxUploadBytes,
	}

	r.HandleFunc("/", indexHandler).Methods(http.MethodGet, http.MethodHead)
	r.PathPrefix("/static/").Handler(staticHandler()).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", router.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/generate", router.generateHandler).Methods(http.MethodPost)

	router.handler = withLogging(logger, r)

	return router
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.handler.ServeHTTP(w, r)
}

func (router *Router) healthHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
