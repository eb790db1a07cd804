package routes

import (
	"encoding/json"
	"net/http"

	"interview-screener/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux              *mux.Router
	ProxyHandler     *handlers.ProxyHandlers
	ScreeningHandler *handlers.ScreeningHandlers
	EventsHandler    *handlers.EventsHandlers
}

func NewRoutes(mux *mux.Router, proxyHandler *handlers.ProxyHandlers, screeningHandler *handlers.ScreeningHandlers, eventsHandler *handlers.EventsHandlers) *Routes {
	return &Routes{mux, proxyHandler, screeningHandler, eventsHandler}
}

func (r *Routes) Init() {
	api := r.Mux.PathPrefix("/api").Subrouter()

	api.HandleFunc("/ultravox", r.ProxyHandler.CreateCall).Methods(http.MethodPost)

	api.HandleFunc("/screenings", r.ScreeningHandler.StartScreening).Methods(http.MethodPost)
	api.HandleFunc("/screenings/events", r.EventsHandler.Stream).Methods(http.MethodGet)
	api.HandleFunc("/screenings/current", r.ScreeningHandler.CurrentScreening).Methods(http.MethodGet)
	api.HandleFunc("/screenings/current", r.ScreeningHandler.EndScreening).Methods(http.MethodDelete)
	api.HandleFunc("/screenings/{callId}/tools/updateCandidateProfile", r.ScreeningHandler.UpdateCandidateProfile).Methods(http.MethodPost)
	api.HandleFunc("/screenings/{callId}/profile", r.ScreeningHandler.CandidateProfile).Methods(http.MethodGet)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
