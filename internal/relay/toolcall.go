package relay

import (
	"encoding/json"
	"fmt"
	"time"

	"interview-screener/internal/domain/entities"
	"interview-screener/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

const (
	CandidateProfileToolName = "updateCandidateProfile"
	CallIDParameter          = "callId"
	CandidateDataParameter   = "candidateData"

	ProfileAcknowledgement = "Updated candidate profile with assessment information."
)

// ClientTool implements a tool the voice agent invokes on the client side.
// The returned string is handed back to the agent and must come quickly.
type ClientTool func(parameters map[string]any) string

type ToolCallRelay struct {
	Logger *logger.Logger
	Bus    *Bus
	now    func() time.Time
}

func NewToolCallRelay(logger *logger.Logger, bus *Bus) *ToolCallRelay {
	return &ToolCallRelay{Logger: logger, Bus: bus, now: time.Now}
}

// Tools returns the client tool registry keyed by model tool name.
func (r *ToolCallRelay) Tools() map[string]ClientTool {
	return map[string]ClientTool{
		CandidateProfileToolName: r.UpdateCandidateProfile,
	}
}

// UpdateCandidateProfile publishes the candidate data of one tool call and
// acknowledges it. Malformed or missing fields are logged, never returned.
func (r *ToolCallRelay) UpdateCandidateProfile(parameters map[string]any) (ack string) {
	ack = ProfileAcknowledgement
	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Error(fmt.Sprintf("Recovered from panic while relaying candidate profile: %v", rec))
			ack = ProfileAcknowledgement
		}
	}()

	callID, ok := parameters[CallIDParameter].(string)
	if !ok || callID == "" {
		r.Logger.Warn("Candidate profile update without callId", logrus.Fields{
			"callId": parameters[CallIDParameter],
		})
		callID = ""
	}

	update := entities.CandidateProfileUpdate{CallID: callID}

	raw, err := candidateDataJSON(parameters[CandidateDataParameter])
	if err != nil {
		r.Logger.Warn(fmt.Sprintf("Unreadable candidateData: %v", err), logrus.Fields{"callId": callID})
	} else {
		update.CandidateData = raw
		var profile entities.CandidateProfile
		if err := json.Unmarshal(raw, &profile); err != nil {
			r.Logger.Warn(fmt.Sprintf("candidateData does not match the profile schema: %v", err), logrus.Fields{"callId": callID})
		} else {
			update.Profile = &profile
		}
	}

	r.Logger.Debug("Received candidate profile update", logrus.Fields{"callId": callID})

	r.Bus.Publish(entities.SessionEvent{
		Type:      entities.EventCandidateProfile,
		CallID:    callID,
		Candidate: &update,
		At:        r.now(),
	})

	return ack
}

// candidateDataJSON accepts the data as a decoded value or as a JSON string.
func candidateDataJSON(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("%s is missing", CandidateDataParameter)
	case string:
		if !json.Valid([]byte(v)) {
			return nil, fmt.Errorf("%s is not valid JSON", CandidateDataParameter)
		}
		return json.RawMessage(v), nil
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, fmt.Errorf("%s is not valid JSON", CandidateDataParameter)
		}
		return v, nil
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}
}
