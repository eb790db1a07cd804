package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/relay"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	StatusConnecting   = "connecting"
	StatusDisconnected = "disconnected"

	closeTimeout = 2 * time.Second
)

var ErrCallJoined = errors.New("a call is already joined")

// UltravoxSession creates a call through the proxy and joins it over the
// call's data websocket.
type UltravoxSession struct {
	CallProxyService Iservices.ICallProxyService
	Dialer           *websocket.Dialer
	Tools            map[string]relay.ClientTool
	Logger           *logger.Logger

	mu   sync.Mutex
	call *joinedCall
}

type joinedCall struct {
	conn      *websocket.Conn
	callbacks Iservices.SessionCallbacks
	logger    *logger.Logger
	tools     map[string]relay.ClientTool

	writeMu    sync.Mutex
	transcript []entities.TranscriptEntry
	done       chan struct{}
	closeOnce  sync.Once
	disconnect sync.Once
}

func NewUltravoxSession(callProxyService Iservices.ICallProxyService, dialer *websocket.Dialer, tools map[string]relay.ClientTool, logger *logger.Logger) *UltravoxSession {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	return &UltravoxSession{
		CallProxyService: callProxyService,
		Dialer:           dialer,
		Tools:            tools,
		Logger:           logger,
	}
}

// StartCall creates the call and joins it. Frames are dispatched to
// callbacks from a reader goroutine until EndCall or a remote close.
func (th *UltravoxSession) StartCall(ctx context.Context, callbacks Iservices.SessionCallbacks, cfg entities.CallConfig, showDebugMessages bool) error {
	th.mu.Lock()
	defer th.mu.Unlock()

	if th.call != nil {
		return ErrCallJoined
	}

	emitStatus(callbacks, StatusConnecting)

	res, err := th.CallProxyService.CreateCall(ctx, dto.CallRequest{CallConfig: cfg})
	if err != nil {
		emitStatus(callbacks, StatusDisconnected)
		return err
	}

	var created dto.UltravoxCallResponse
	if err := json.Unmarshal(res, &created); err != nil {
		emitStatus(callbacks, StatusDisconnected)
		return fmt.Errorf("failed to decode created call: %w", err)
	}
	if created.JoinURL == "" {
		emitStatus(callbacks, StatusDisconnected)
		return errors.New("created call has no joinUrl")
	}

	joinURL, err := buildJoinURL(created.JoinURL, showDebugMessages)
	if err != nil {
		emitStatus(callbacks, StatusDisconnected)
		return err
	}

	conn, _, err := th.Dialer.DialContext(ctx, joinURL, nil)
	if err != nil {
		emitStatus(callbacks, StatusDisconnected)
		return fmt.Errorf("failed to join call: %w", err)
	}

	call := &joinedCall{
		conn:      conn,
		callbacks: callbacks,
		logger:    th.Logger.With(logrus.Fields{"ultravoxCallId": created.CallID}),
		tools:     th.Tools,
		done:      make(chan struct{}),
	}
	th.call = call

	go func() {
		call.readLoop()
		th.mu.Lock()
		if th.call == call {
			th.call = nil
		}
		th.mu.Unlock()
	}()

	th.Logger.Info(fmt.Sprintf("Joined Ultravox call %s", created.CallID))
	return nil
}

// EndCall hangs up the joined call and waits for its reader to exit.
func (th *UltravoxSession) EndCall(ctx context.Context) error {
	th.mu.Lock()
	call := th.call
	th.call = nil
	th.mu.Unlock()

	if call == nil {
		return nil
	}

	if err := call.writeJSON(dto.HangUp{Type: dto.MessageTypeHangUp}); err != nil {
		th.Logger.Warn(fmt.Sprintf("Failed to send hang_up: %v", err))
	}
	call.close()

	select {
	case <-call.done:
	case <-ctx.Done():
		return fmt.Errorf("waiting for call to close: %w", ctx.Err())
	}
	return nil
}

func buildJoinURL(raw string, debug bool) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid joinUrl: %w", err)
	}
	if debug {
		q := u.Query()
		q.Set("experimentalMessages", "debug")
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func emitStatus(callbacks Iservices.SessionCallbacks, status string) {
	if callbacks.OnStatusChange != nil {
		callbacks.OnStatusChange(status)
	}
}

func (c *joinedCall) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(closeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *joinedCall) close() {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeTimeout))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
}

func (c *joinedCall) readLoop() {
	defer close(c.done)
	defer c.disconnect.Do(func() { emitStatus(c.callbacks, StatusDisconnected) })
	defer c.close()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Sprintf("Recovered from panic in call reader: %v", r))
		}
	}()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug(fmt.Sprintf("Call reader stopped: %v", err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.dispatch(data)
	}
}

func (c *joinedCall) dispatch(data []byte) {
	var msg dto.DataMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn(fmt.Sprintf("Skipping malformed data message: %v", err))
		return
	}

	switch msg.Type {
	case dto.MessageTypeState:
		emitStatus(c.callbacks, msg.State)
	case dto.MessageTypeTranscript:
		c.mergeTranscript(msg)
	case dto.MessageTypeDebug, dto.MessageTypeExperimental:
		if c.callbacks.OnDebugMessage != nil {
			c.callbacks.OnDebugMessage(entities.DebugEvent{
				Message:    append(json.RawMessage(nil), data...),
				ReceivedAt: time.Now(),
			})
		}
	case dto.MessageTypeClientToolInvoke:
		c.invokeTool(msg)
	default:
		c.logger.Debug(fmt.Sprintf("Ignoring data message of type %q", msg.Type))
	}
}

// mergeTranscript applies a full text or a delta to the entry with the
// same ordinal, appending a new entry the first time an ordinal is seen.
func (c *joinedCall) mergeTranscript(msg dto.DataMessage) {
	if msg.Text == nil && msg.Delta == nil {
		c.logger.Warn("Skipping transcript message without text or delta")
		return
	}

	idx := -1
	for i := range c.transcript {
		if c.transcript[i].Ordinal == msg.Ordinal {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.transcript = append(c.transcript, entities.TranscriptEntry{Ordinal: msg.Ordinal})
		idx = len(c.transcript) - 1
	}

	entry := &c.transcript[idx]
	entry.Speaker = speakerFor(msg.Role)
	entry.Medium = msg.Medium
	entry.Final = msg.Final
	if msg.Text != nil {
		entry.Text = *msg.Text
	} else {
		entry.Text += *msg.Delta
	}

	if c.callbacks.OnTranscriptChange != nil {
		c.callbacks.OnTranscriptChange(append([]entities.TranscriptEntry(nil), c.transcript...))
	}
}

func speakerFor(role string) entities.Speaker {
	if role == string(entities.SpeakerUser) {
		return entities.SpeakerUser
	}
	return entities.SpeakerAgent
}

func (c *joinedCall) invokeTool(msg dto.DataMessage) {
	reply := dto.ClientToolResult{
		Type:         dto.MessageTypeClientToolResult,
		InvocationID: msg.InvocationID,
	}

	tool, ok := c.tools[msg.ToolName]
	switch {
	case !ok:
		c.logger.Warn(fmt.Sprintf("Unknown client tool %q", msg.ToolName))
		reply.ResponseType = dto.ToolResponseTypeError
		reply.ErrorType = dto.ToolErrorTypeUndefined
		reply.ErrorMessage = fmt.Sprintf("Unknown tool: %s", msg.ToolName)
	default:
		parameters := map[string]any{}
		if len(msg.Parameters) > 0 {
			if err := json.Unmarshal(msg.Parameters, &parameters); err != nil {
				c.logger.Warn(fmt.Sprintf("Client tool %s got malformed parameters: %v", msg.ToolName, err))
				reply.ResponseType = dto.ToolResponseTypeError
				reply.ErrorType = dto.ToolErrorTypeImplementation
				reply.ErrorMessage = "invalid tool parameters"
				break
			}
		}
		reply.Result = tool(parameters)
	}

	if err := c.writeJSON(reply); err != nil {
		c.logger.Error(fmt.Sprintf("Failed to send tool result: %v", err))
	}
}
