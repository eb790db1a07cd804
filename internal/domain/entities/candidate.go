package entities

import "encoding/json"

// CandidateProfile is the structured assessment the voice agent reports
// through the updateCandidateProfile tool. Every field is optional.
type CandidateProfile struct {
	Skills            []Skill            `json:"skills,omitempty"`
	Experience        []Experience       `json:"experience,omitempty"`
	BehavioralTraits  []BehavioralTrait  `json:"behavioralTraits,omitempty"`
	OverallAssessment *OverallAssessment `json:"overallAssessment,omitempty"`
}

type Skill struct {
	SkillName        string `json:"skillName"`
	ProficiencyLevel string `json:"proficiencyLevel,omitempty"`
	Context          string `json:"context,omitempty"`
}

type Experience struct {
	Role             string  `json:"role"`
	Duration         string  `json:"duration,omitempty"`
	Responsibilities string  `json:"responsibilities,omitempty"`
	Relevance        float64 `json:"relevance,omitempty"`
}

type BehavioralTrait struct {
	Trait    string `json:"trait"`
	Evidence string `json:"evidence"`
}

type OverallAssessment struct {
	TechnicalFit float64 `json:"technicalFit,omitempty"`
	CulturalFit  float64 `json:"culturalFit,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// CandidateProfileUpdate is one relayed tool call. CandidateData is kept
// verbatim; Profile is nil when the payload did not match the schema.
type CandidateProfileUpdate struct {
	CallID        string            `json:"callId"`
	CandidateData json.RawMessage   `json:"candidateData"`
	Profile       *CandidateProfile `json:"profile,omitempty"`
}
