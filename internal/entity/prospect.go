package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status de acompanhamento de um prospect
type Status string

const (
	StatusNotContacted Status = "Not Contacted"
	StatusContacted    Status = "Contacted"
	StatusReplied      Status = "Replied"
	StatusMeetingSet   Status = "Meeting Set"
	StatusClosed       Status = "Closed"
)

// DateLayout is the format of Prospect.DateAdded.
const DateLayout = "2006-01-02"

var statuses = []Status{
	StatusNotContacted,
	StatusContacted,
	StatusReplied,
	StatusMeetingSet,
	StatusClosed,
}

// Statuses returns the enumeration in display order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func (s Status) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Entidade: Prospect
type Prospect struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Company   string `json:"company"`
	Domain    string `json:"domain,omitempty"`
	Email     string `json:"email"`
	Title     string `json:"title,omitempty"`
	Status    Status `json:"status"`
	DateAdded string `json:"dateAdded"`
}

// Factory. Validation happens in the usecase before this is called.
func NewProspect(firstName, lastName, company, domain, email, title string, status Status, now time.Time) *Prospect {
	if status == "" {
		status = StatusNotContacted
	}
	return &Prospect{
		ID:        uuid.New().String(),
		FirstName: firstName,
		LastName:  lastName,
		Company:   company,
		Domain:    domain,
		Email:     email,
		Title:     title,
		Status:    status,
		DateAdded: now.Format(DateLayout),
	}
}

// KeyValueStore is the durable slot the prospect list is mirrored to.
// Load returns ErrKeyNotFound when nothing has been written under key.
type KeyValueStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
