package chat

import "github.com/futig/faq-assistant/internal/entity"

// toSessionDTO converts Session entity to SessionDTO. The credential never leaves the server.
func toSessionDTO(session *entity.Session, threshold float64) *entity.SessionDTO {
	history := make([]entity.TurnDTO, 0, len(session.History))
	for _, turn := range session.History {
		history = append(history, entity.TurnDTO{Role: turn.Role, Content: turn.Content})
	}

	return &entity.SessionDTO{
		ID:            session.ID,
		State:         session.State,
		History:       history,
		Threshold:     threshold,
		HasCredential: session.HasCredential(),
		LastError:     session.LastError,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
}

func toSessionSettings(req *entity.UpdateSettingsRequest) entity.SessionSettings {
	return entity.SessionSettings{
		Threshold:      req.Threshold,
		ClearThreshold: req.ResetThreshold,
		Credential:     req.Credential,
	}
}
