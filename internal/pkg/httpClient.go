package client

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// HTTPClient returns the client used for calls to the Ultravox REST API.
func HTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// WebsocketDialer returns the dialer used to join created calls.
func WebsocketDialer(handshakeTimeout time.Duration) *websocket.Dialer {
	if handshakeTimeout <= 0 {
		handshakeTimeout = 10 * time.Second
	}
	return &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
}
