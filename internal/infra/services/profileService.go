package services

import (
	"context"
	"fmt"

	"interview-screener/internal/domain/entities"
	"interview-screener/internal/domain/interfaces/repository"
	"interview-screener/internal/infra/logger"

	"github.com/sirupsen/logrus"
)

// ProfileService keeps the latest candidate profile relayed for each call.
type ProfileService struct {
	ProfileRepository repository.Repository[entities.CandidateProfileUpdate]
	Logger            *logger.Logger
}

func NewProfileService(profileRepository repository.Repository[entities.CandidateProfileUpdate], logger *logger.Logger) *ProfileService {
	return &ProfileService{
		ProfileRepository: profileRepository,
		Logger:            logger,
	}
}

// HandleEvent stores profile updates and forgets a call's profile once the
// session has ended.
func (ps *ProfileService) HandleEvent(event entities.SessionEvent) {
	ctx := context.Background()

	switch event.Type {
	case entities.EventCandidateProfile:
		if event.Candidate == nil || event.CallID == "" {
			ps.Logger.Warn("Ignoring candidate profile update without callId")
			return
		}
		if _, err := ps.ProfileRepository.Update(ctx, event.CallID, *event.Candidate); err != nil {
			ps.Logger.Error(fmt.Sprintf("Failed to store candidate profile: %v", err), logrus.Fields{"callId": event.CallID})
		}
	case entities.EventSessionEnded:
		if err := ps.ProfileRepository.Delete(ctx, event.CallID); err != nil {
			ps.Logger.Error(fmt.Sprintf("Failed to clear candidate profile: %v", err), logrus.Fields{"callId": event.CallID})
		}
	}
}

// FindProfile returns the latest profile relayed for callID.
func (ps *ProfileService) FindProfile(ctx context.Context, callID string) (entities.CandidateProfileUpdate, error) {
	profile, err := ps.ProfileRepository.FindByID(ctx, callID)
	if err != nil {
		return entities.CandidateProfileUpdate{}, err
	}
	return profile, nil
}
