package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"interview-screener/internal/config"
	"interview-screener/internal/domain/dto"
	"interview-screener/internal/domain/entities"
	Iservices "interview-screener/internal/domain/interfaces/services"
	"interview-screener/internal/infra/logger"
	"interview-screener/internal/relay"
	"interview-screener/internal/timer"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	ScreeningDuration    = 10 * time.Minute
	ScreeningMaxDuration = "600s"
	WarningThreshold     = 30 * time.Second
	EndGracePeriod       = 10 * time.Second

	StatusStarting      = "Starting call..."
	StatusStarted       = "Call started successfully"
	StatusEnding        = "Ending screening..."
	StatusEnded         = "Screening ended successfully"
	statusStartErrorFmt = "Error starting call: %v"
	statusEndErrorFmt   = "Error ending screening: %v"
)

// AfterFunc schedules f after d and returns a function that cancels it.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// ScreeningOptions tune timing and identity. Zero values take the
// production defaults.
type ScreeningOptions struct {
	Duration    time.Duration
	WarnAt      time.Duration
	Interval    time.Duration
	GracePeriod time.Duration
	NewTicker   timer.TickerFactory
	AfterFunc   AfterFunc
	Now         func() time.Time
	NewID       func() string
}

// ScreeningService drives one screening call at a time through
// idle, active, warning and ending, and keeps the transcript, debug log and
// countdown the UI renders.
type ScreeningService struct {
	Logger       *logger.Logger
	Template     *config.CallTemplate
	VoiceSession Iservices.IVoiceSession

	bus       *relay.Bus
	toolRelay *relay.ToolCallRelay
	countdown *timer.Countdown
	opts      ScreeningOptions

	mu         sync.Mutex
	session    entities.Session
	activation uint64
	starting   bool
	stopping   bool
	stopGrace  func() bool
	graceSeq   uint64
}

func NewScreeningService(logger *logger.Logger, template *config.CallTemplate, voiceSession Iservices.IVoiceSession, bus *relay.Bus, toolRelay *relay.ToolCallRelay, opts ScreeningOptions) *ScreeningService {
	if opts.Duration == 0 {
		opts.Duration = ScreeningDuration
	}
	if opts.WarnAt == 0 {
		opts.WarnAt = WarningThreshold
	}
	if opts.Interval == 0 {
		opts.Interval = time.Second
	}
	if opts.GracePeriod == 0 {
		opts.GracePeriod = EndGracePeriod
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = NewSessionID
	}

	ss := &ScreeningService{
		Logger:       logger,
		Template:     template,
		VoiceSession: voiceSession,
		bus:          bus,
		toolRelay:    toolRelay,
		opts:         opts,
		session:      entities.Session{State: entities.StateIdle, Status: entities.StatusOff},
	}
	ss.countdown = timer.New(timer.Config{
		Duration:  opts.Duration,
		WarnAt:    opts.WarnAt,
		Interval:  opts.Interval,
		NewTicker: opts.NewTicker,
		OnWarning: ss.onTimeWarning,
		OnEnd:     ss.onTimeEnd,
	})
	return ss
}

// NewSessionID returns a time-ordered session id.
func NewSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "call-" + id.String()
}

// BuildCallConfig derives the configuration of one screening call from the
// template. The template itself is left untouched.
func BuildCallConfig(template entities.CallConfig, jobDescription, modelOverride, callID string) entities.CallConfig {
	cfg := template.Clone()

	cfg.SystemPrompt = fmt.Sprintf("%s\n\n## Job Description\n%s\n\n## Interview Duration\nThis interview should last approximately 10 minutes.", cfg.SystemPrompt, jobDescription)
	cfg.MaxDuration = ScreeningMaxDuration
	if modelOverride != "" {
		cfg.Model = modelOverride
	}

	if idx := cfg.FindTool(relay.CandidateProfileToolName); idx >= 0 {
		cfg.SelectedTools[idx].ParameterOverrides = map[string]any{relay.CallIDParameter: callID}
	}
	return cfg
}

// InjectCurrentTime replaces the current time placeholder of the prompt.
func InjectCurrentTime(cfg entities.CallConfig, now time.Time) entities.CallConfig {
	cfg.SystemPrompt = strings.ReplaceAll(cfg.SystemPrompt, config.CurrentTimePlaceholder, now.Format(time.RFC1123))
	return cfg
}

// StartScreening builds the call configuration for req and starts the call.
//
// Returns:
//   - Iservices.ErrCallActive when a call is active or being started.
//   - Iservices.ErrEmptyJobDescription when the job description is blank.
//   - the voice session error, wrapped, when the call could not start.
func (ss *ScreeningService) StartScreening(ctx context.Context, req Iservices.StartRequest) (entities.Session, error) {
	ss.mu.Lock()
	if ss.session.State != entities.StateIdle || ss.starting {
		ss.mu.Unlock()
		return entities.Session{}, Iservices.ErrCallActive
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		ss.setStatusLocked(Iservices.ErrEmptyJobDescription.Error())
		ss.mu.Unlock()
		return entities.Session{}, Iservices.ErrEmptyJobDescription
	}

	callID := ss.opts.NewID()
	now := ss.opts.Now()
	ss.starting = true
	ss.session = entities.Session{ID: callID, State: entities.StateIdle}
	ss.publishLocked(entities.SessionEvent{Type: entities.EventSessionStarted})
	ss.setStatusLocked(StatusStarting)

	if ss.Template == nil {
		err := errors.New("no call template loaded")
		ss.failStartLocked(callID, err)
		ss.mu.Unlock()
		return entities.Session{}, fmt.Errorf("starting screening: %w", err)
	}
	cfg := BuildCallConfig(ss.Template.CallConfig, req.JobDescription, req.ModelOverride, callID)
	cfg = InjectCurrentTime(cfg, now)
	if cfg.FindTool(relay.CandidateProfileToolName) < 0 {
		ss.Logger.Warn(fmt.Sprintf("Call template has no %s tool; candidate profiles will not be relayed", relay.CandidateProfileToolName))
	}
	ss.mu.Unlock()

	ss.Logger.Info("Starting screening call", logrus.Fields{"callId": callID, "model": cfg.Model})
	err := ss.VoiceSession.StartCall(ctx, ss.callbacksFor(callID), cfg, req.ShowDebugMessages)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.starting = false

	if err != nil {
		ss.Logger.Error(fmt.Sprintf("Failed to start screening call: %v", err), logrus.Fields{"callId": callID})
		ss.failStartLocked(callID, err)
		return entities.Session{}, fmt.Errorf("starting screening: %w", err)
	}

	ss.session.State = entities.StateActive
	ss.session.StartedAt = &now
	ss.cancelGraceLocked()
	ss.activation = ss.countdown.Start()
	ss.setStatusLocked(StatusStarted)

	return ss.snapshotLocked(dto.PageOptions{ShowUserTranscripts: true, ShowDebugMessages: req.ShowDebugMessages}), nil
}

func (ss *ScreeningService) failStartLocked(callID string, err error) {
	ss.session = entities.Session{State: entities.StateIdle}
	ss.setCallStatusLocked(callID, fmt.Sprintf(statusStartErrorFmt, err))
	ss.publishLocked(entities.SessionEvent{Type: entities.EventSessionEnded, CallID: callID})
}

// EndScreening hangs up the active call. It is a no-op when no call is
// active or an end is already in progress. On failure the session stays
// active, since the call may still be live.
func (ss *ScreeningService) EndScreening(ctx context.Context) error {
	ss.mu.Lock()
	if ss.session.State == entities.StateIdle || ss.stopping {
		ss.mu.Unlock()
		return nil
	}
	ss.cancelGraceLocked()
	ss.stopping = true
	callID := ss.session.ID
	ss.setStatusLocked(StatusEnding)
	ss.mu.Unlock()

	ss.Logger.Info("Ending screening call", logrus.Fields{"callId": callID})
	err := ss.VoiceSession.EndCall(ctx)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.stopping = false

	if err != nil {
		ss.Logger.Error(fmt.Sprintf("Failed to end screening call: %v", err), logrus.Fields{"callId": callID})
		ss.setStatusLocked(fmt.Sprintf(statusEndErrorFmt, err))
		if ss.activation != 0 && ss.countdown.Remaining() == 0 && ss.stopGrace == nil {
			// time is up and no automatic end is pending; retry after the grace period
			ss.expireLocked()
		}
		return fmt.Errorf("ending screening: %w", err)
	}

	// the countdown may have run out while EndCall was in flight
	ss.cancelGraceLocked()
	ss.countdown.Stop()
	ss.activation = 0
	ss.session = entities.Session{State: entities.StateIdle}
	ss.publishLocked(entities.SessionEvent{Type: entities.EventSessionEnded, CallID: callID})
	ss.setCallStatusLocked(callID, StatusEnded)
	return nil
}

// Snapshot returns a consistent copy of the session for rendering.
func (ss *ScreeningService) Snapshot(opts dto.PageOptions) entities.Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.snapshotLocked(opts)
}

func (ss *ScreeningService) snapshotLocked(opts dto.PageOptions) entities.Session {
	out := ss.session
	if out.Status == "" {
		out.Status = entities.StatusOff
	}

	remaining := ss.countdown.Remaining()
	out.MaxDuration = ss.opts.Duration
	out.MaxSeconds = int(ss.opts.Duration / time.Second)
	out.RemainingSeconds = int(remaining / time.Second)
	out.Remaining = timer.FormatClock(remaining)
	out.ShowSpeakerMute = opts.ShowSpeakerMute

	if out.StartedAt != nil {
		startedAt := *out.StartedAt
		out.StartedAt = &startedAt
	}
	out.Transcript = entities.FilterTranscript(ss.session.Transcript, opts.ShowUserTranscripts)
	if opts.ShowDebugMessages {
		out.DebugMessages = append([]entities.DebugEvent(nil), ss.session.DebugMessages...)
	} else {
		out.DebugMessages = nil
	}
	return out
}

// CurrentCallID returns the id of the call in progress, or
// Iservices.ErrNoActiveCall.
func (ss *ScreeningService) CurrentCallID() (string, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.session.State == entities.StateIdle || ss.session.ID == "" {
		return "", Iservices.ErrNoActiveCall
	}
	return ss.session.ID, nil
}

// Subscribe registers handler for the events of callID; an empty callID
// receives every event.
func (ss *ScreeningService) Subscribe(callID string, handler func(entities.SessionEvent)) func() {
	return ss.bus.Subscribe(callID, handler)
}

func (ss *ScreeningService) SubscribeAll(handler func(entities.SessionEvent)) func() {
	return ss.bus.SubscribeAll(handler)
}

// Relay returns the tool-call relay publishing on this service's bus.
func (ss *ScreeningService) Relay() *relay.ToolCallRelay {
	return ss.toolRelay
}

// Close stops the countdown and the grace timer and shuts the bus down.
// It does not hang up a live call; call EndScreening first.
func (ss *ScreeningService) Close() {
	ss.mu.Lock()
	ss.cancelGraceLocked()
	ss.countdown.Stop()
	ss.activation = 0
	ss.mu.Unlock()

	ss.bus.Close()
}

func (ss *ScreeningService) callbacksFor(callID string) Iservices.SessionCallbacks {
	return Iservices.SessionCallbacks{
		OnStatusChange: func(status string) {
			ss.mu.Lock()
			defer ss.mu.Unlock()
			if ss.session.ID != callID {
				return
			}
			if status == "" {
				status = entities.StatusOff
			}
			ss.setStatusLocked(status)
		},
		OnTranscriptChange: func(transcript []entities.TranscriptEntry) {
			ss.mu.Lock()
			defer ss.mu.Unlock()
			if ss.session.ID != callID {
				return
			}
			ss.session.Transcript = append([]entities.TranscriptEntry(nil), transcript...)
			ss.publishLocked(entities.SessionEvent{
				Type:       entities.EventTranscript,
				Transcript: append([]entities.TranscriptEntry(nil), transcript...),
			})
		},
		OnDebugMessage: func(message entities.DebugEvent) {
			ss.mu.Lock()
			defer ss.mu.Unlock()
			if ss.session.ID != callID {
				return
			}
			ss.session.DebugMessages = append(ss.session.DebugMessages, message)
			ss.publishLocked(entities.SessionEvent{Type: entities.EventDebug, Debug: &message})
		},
	}
}

func (ss *ScreeningService) onTimeWarning(activation uint64, remaining time.Duration) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if activation != ss.activation || ss.stopping || ss.session.State != entities.StateActive {
		return
	}

	ss.session.State = entities.StateWarning
	ss.Logger.Info("Screening time is running out", logrus.Fields{"callId": ss.session.ID})
	ss.publishLocked(entities.SessionEvent{Type: entities.EventTimeWarning, RemainingSeconds: int(remaining / time.Second)})
}

func (ss *ScreeningService) onTimeEnd(activation uint64) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if activation != ss.activation || ss.stopping || ss.session.State == entities.StateIdle || ss.session.State == entities.StateEnding {
		return
	}
	ss.expireLocked()
}

// expireLocked moves the session to ending and schedules the automatic
// hang up after the grace period.
func (ss *ScreeningService) expireLocked() {
	ss.session.State = entities.StateEnding
	ss.session.EndingSoon = true
	ss.Logger.Info(fmt.Sprintf("Screening time is up, ending in %s", ss.opts.GracePeriod), logrus.Fields{"callId": ss.session.ID})
	ss.publishLocked(entities.SessionEvent{Type: entities.EventTimeEnding})

	ss.cancelGraceLocked()
	ss.graceSeq++
	seq := ss.graceSeq
	ss.stopGrace = ss.opts.AfterFunc(ss.opts.GracePeriod, func() { ss.graceExpired(seq) })
}

func (ss *ScreeningService) graceExpired(seq uint64) {
	ss.mu.Lock()
	if seq != ss.graceSeq || ss.stopGrace == nil {
		ss.mu.Unlock()
		return
	}
	ss.stopGrace = nil
	ss.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			ss.Logger.Error(fmt.Sprintf("Recovered from panic while ending screening: %v", r))
		}
	}()

	if err := ss.EndScreening(context.Background()); err != nil {
		ss.Logger.Error(fmt.Sprintf("Automatic end of screening failed: %v", err))
	}
}

func (ss *ScreeningService) cancelGraceLocked() {
	if ss.stopGrace != nil {
		ss.stopGrace()
		ss.stopGrace = nil
	}
	ss.graceSeq++
}

func (ss *ScreeningService) setStatusLocked(status string) {
	ss.setCallStatusLocked(ss.session.ID, status)
}

// setCallStatusLocked publishes status for callID, which may differ from
// the session id once the session has been reset to idle.
func (ss *ScreeningService) setCallStatusLocked(callID, status string) {
	ss.session.Status = status
	ss.publishLocked(entities.SessionEvent{Type: entities.EventStatus, CallID: callID, Status: status})
}

func (ss *ScreeningService) publishLocked(event entities.SessionEvent) {
	if event.CallID == "" {
		event.CallID = ss.session.ID
	}
	event.At = ss.opts.Now()
	ss.bus.Publish(event)
}
