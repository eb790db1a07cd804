package cli

import (
	"net/http"

	"interview-screener/internal/config"
	"interview-screener/internal/domain/entities"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/handlers"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/infra/provider"
	"interview-screener/internal/infra/repository"
	"interview-screener/internal/infra/routes"
	"interview-screener/internal/infra/services"
	"interview-screener/internal/middleware"
	client "interview-screener/internal/pkg"
	"interview-screener/internal/relay"

	"github.com/gorilla/mux"
)

// app is the wired service graph behind the HTTP server.
type app struct {
	router    *mux.Router
	screening *services.ScreeningService
}

func newApp(cfg *config.Config, log *logger.Logger, template *config.CallTemplate, opts services.ScreeningOptions) *app {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware(log))

	httpClient := client.HTTPClient(cfg.RequestTimeout)
	ultravoxProvider := provider.NewUltravoxProvider(log, httpClient, cfg.UltravoxAPIURL, config.UltravoxAPIKey)

	var callProxySvc Iservices.ICallProxyService = services.NewCallProxyService(ultravoxProvider, log)

	bus := relay.NewBus(log, relay.DefaultQueueSize)
	toolRelay := relay.NewToolCallRelay(log, bus)

	voiceSession := services.NewUltravoxSession(callProxySvc, client.WebsocketDialer(cfg.RequestTimeout), toolRelay.Tools(), log)
	screeningSvc := services.NewScreeningService(log, template, voiceSession, bus, toolRelay, opts)

	profileRepo := repository.NewMemoryRepository[entities.CandidateProfileUpdate]()
	profileSvc := services.NewProfileService(profileRepo, log)
	screeningSvc.SubscribeAll(profileSvc.HandleEvent)

	proxyHandlers := handlers.NewProxyHandlers(log, callProxySvc)
	screeningHandlers := handlers.NewScreeningHandlers(log, screeningSvc, screeningSvc.Relay(), profileSvc)
	eventsHandlers := handlers.NewEventsHandlers(log, screeningSvc)

	routes.NewRoutes(router, proxyHandlers, screeningHandlers, eventsHandlers).Init()

	return &app{router: router, screening: screeningSvc}
}

func (a *app) Handler() http.Handler {
	return a.router
}
