package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/infra/queue"
)

type LogProspectInput struct {
	FirstName string        `json:"first_name" validate:"required"`
	LastName  string        `json:"last_name"`
	Company   string        `json:"company" validate:"required"`
	Domain    string        `json:"domain"`
	Email     string        `json:"email" validate:"required"`
	Title     string        `json:"title"`
	Status    entity.Status `json:"status" validate:"prospect_status"`
}

func (in LogProspectInput) trimmed() LogProspectInput {
	return LogProspectInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Company:   strings.TrimSpace(in.Company),
		Domain:    strings.TrimSpace(in.Domain),
		Email:     strings.TrimSpace(in.Email),
		Title:     strings.TrimSpace(in.Title),
		Status:    entity.Status(strings.TrimSpace(string(in.Status))),
	}
}

type EventPublisher interface {
	PublishProspectEvent(ctx context.Context, event queue.ProspectEvent) error
}

// ConfirmFunc is asked before a prospect is removed. Returning false aborts
// the removal.
type ConfirmFunc func(p entity.Prospect) bool

// AlwaysConfirm is for callers that already obtained confirmation.
func AlwaysConfirm(entity.Prospect) bool { return true }
