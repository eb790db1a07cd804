package handlers

import (
	"fmt"
	"net/http"
	"time"

	"interview-screener/internal/domain/entities"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const eventWriteTimeout = 5 * time.Second

type EventsHandlers struct {
	Logger           *logger.Logger
	ScreeningService Iservices.IScreeningService
	Upgrader         websocket.Upgrader
}

func NewEventsHandlers(logger *logger.Logger, screeningService Iservices.IScreeningService) *EventsHandlers {
	return &EventsHandlers{
		Logger:           logger,
		ScreeningService: screeningService,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream upgrades to a websocket and pushes session events as JSON frames
// until the client goes away. Query callId restricts the stream to one call.
func (th *EventsHandlers) Stream(w http.ResponseWriter, r *http.Request) {
	opts := pageOptions(r)
	callID := r.URL.Query().Get("callId")

	conn, err := th.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		th.Logger.Warn(fmt.Sprintf("Websocket upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	log := th.Logger.With(logrus.Fields{"remoteAddr": r.RemoteAddr, "callId": callID})
	log.Info("Event stream opened")

	unsubscribe := th.ScreeningService.Subscribe(callID, func(event entities.SessionEvent) {
		switch event.Type {
		case entities.EventDebug:
			if !opts.ShowDebugMessages {
				return
			}
		case entities.EventTranscript:
			event.Transcript = entities.FilterTranscript(event.Transcript, opts.ShowUserTranscripts)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
		if err := conn.WriteJSON(event); err != nil {
			log.Debug(fmt.Sprintf("Dropping event for closed stream: %v", err))
		}
	})
	defer unsubscribe()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Info("Event stream closed")
			return
		}
	}
}
