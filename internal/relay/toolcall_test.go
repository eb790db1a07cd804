package relay

import (
	"testing"

	"interview-screener/internal/domain/entities"
	"interview-screener/internal/infra/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRelay(t *testing.T) (*ToolCallRelay, *recorder) {
	t.Helper()
	bus := NewBus(logger.NewDiscard(), 0)
	t.Cleanup(bus.Close)
	rec := &recorder{}
	bus.SubscribeAll(rec.handle)
	return NewToolCallRelay(logger.NewDiscard(), bus), rec
}

func TestUpdateCandidateProfile_PublishesDataAndCallID(t *testing.T) {
	relay, rec := newRelay(t)

	ack := relay.UpdateCandidateProfile(map[string]any{
		"callId": "call-123",
		"candidateData": map[string]any{
			"skills": []any{
				map[string]any{"skillName": "Go", "proficiencyLevel": "expert"},
			},
			"overallAssessment": map[string]any{"technicalFit": 4, "notes": "solid"},
		},
	})
	assert.Equal(t, ProfileAcknowledgement, ack)

	events := rec.waitFor(t, 1)
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, entities.EventCandidateProfile, event.Type)
	assert.Equal(t, "call-123", event.CallID)
	require.NotNil(t, event.Candidate)
	assert.Equal(t, "call-123", event.Candidate.CallID)
	require.NotNil(t, event.Candidate.Profile)
	assert.Equal(t, "Go", event.Candidate.Profile.Skills[0].SkillName)
	assert.Equal(t, 4.0, event.Candidate.Profile.OverallAssessment.TechnicalFit)
	assert.JSONEq(t, `{"skills":[{"skillName":"Go","proficiencyLevel":"expert"}],"overallAssessment":{"technicalFit":4,"notes":"solid"}}`, string(event.Candidate.CandidateData))
}

func TestUpdateCandidateProfile_AcceptsStringifiedData(t *testing.T) {
	relay, rec := newRelay(t)

	relay.UpdateCandidateProfile(map[string]any{
		"callId":        "call-1",
		"candidateData": `{"experience":[{"role":"Backend engineer","relevance":5}]}`,
	})

	events := rec.waitFor(t, 1)
	require.NotNil(t, events[0].Candidate.Profile)
	assert.Equal(t, "Backend engineer", events[0].Candidate.Profile.Experience[0].Role)
}

func TestUpdateCandidateProfile_ToleratesMalformedPayloads(t *testing.T) {
	cases := map[string]map[string]any{
		"nil parameters":     nil,
		"missing data":       {"callId": "call-1"},
		"non-string call id": {"callId": 42},
		"invalid json":       {"callId": "call-1", "candidateData": "{not json"},
		"wrong shape":        {"callId": "call-1", "candidateData": map[string]any{"skills": "many"}},
	}

	for name, params := range cases {
		t.Run(name, func(t *testing.T) {
			relay, rec := newRelay(t)

			assert.NotPanics(t, func() {
				assert.Equal(t, ProfileAcknowledgement, relay.UpdateCandidateProfile(params))
			})

			events := rec.waitFor(t, 1)
			assert.Equal(t, entities.EventCandidateProfile, events[0].Type)
			assert.Nil(t, events[0].Candidate.Profile)
		})
	}
}

func TestTools_RegistersCandidateProfileTool(t *testing.T) {
	relay, _ := newRelay(t)

	tools := relay.Tools()
	require.Contains(t, tools, CandidateProfileToolName)
	assert.Equal(t, ProfileAcknowledgement, tools[CandidateProfileToolName](map[string]any{}))
}
