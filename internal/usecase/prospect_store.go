package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/infra/queue"
)

// StorageKey is the fixed slot the whole list is written under.
const StorageKey = "prospects"

// ProspectStore owns the in-memory prospect list (newest first) and mirrors it
// to the key-value slot after every successful mutation.
type ProspectStore struct {
	mu        sync.Mutex
	kv        entity.KeyValueStore
	key       string
	prospects []entity.Prospect
	publisher EventPublisher
	now       func() time.Time

	// syncErr is the last failed write; non-nil while the slot is behind
	// the in-memory list.
	syncErr error
}

// NewProspectStore returns an empty store. Call Initialize to load the
// persisted list. publisher may be nil.
func NewProspectStore(kv entity.KeyValueStore, publisher EventPublisher) *ProspectStore {
	return &ProspectStore{
		kv:        kv,
		key:       StorageKey,
		publisher: publisher,
		now:       time.Now,
	}
}

// Initialize replaces the in-memory list with what is persisted. A missing key
// or unreadable content leaves the store empty; the failure is only logged.
func (s *ProspectStore) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prospects = nil

	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, entity.ErrKeyNotFound) {
			log.Printf("⚠️ Falha ao ler prospects do storage, iniciando vazio: %v", err)
		}
		return
	}

	var loaded []entity.Prospect
	if err := json.Unmarshal(data, &loaded); err != nil {
		log.Printf("⚠️ JSON de prospects inválido, iniciando vazio: %v", err)
		return
	}

	s.prospects = loaded
	log.Printf("📂 %d prospect(s) carregados", len(loaded))
}

// Append validates input and prepends the new prospect.
func (s *ProspectStore) Append(ctx context.Context, input LogProspectInput) (*entity.Prospect, error) {
	if errs := ValidateLogProspectInput(input); len(errs) > 0 {
		return nil, &ValidationFailure{Errors: errs}
	}
	in := input.trimmed()

	p := entity.NewProspect(in.FirstName, in.LastName, in.Company, in.Domain, in.Email, in.Title, in.Status, s.now())

	s.mu.Lock()
	s.prospects = append([]entity.Prospect{*p}, s.prospects...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, queue.EventProspectLogged, *p, "")

	created := *p
	return &created, nil
}

// Remove deletes the prospect with id after confirm approves it. An unknown id
// is a no-op and reports false.
func (s *ProspectStore) Remove(ctx context.Context, id string, confirm ConfirmFunc) (bool, error) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	target := s.prospects[idx]
	s.mu.Unlock()

	// confirm may block on user input; the lock is not held meanwhile.
	if confirm == nil || !confirm(target) {
		return false, ErrRemovalNotConfirmed
	}

	s.mu.Lock()
	idx = s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	s.prospects = append(s.prospects[:idx], s.prospects[idx+1:]...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, queue.EventProspectRemoved, target, "")
	return true, nil
}

// UpdateStatus sets the status of the prospect with id. An unknown id is a
// no-op and reports false.
func (s *ProspectStore) UpdateStatus(ctx context.Context, id string, status entity.Status) (bool, error) {
	if errs := validateStatus(status); len(errs) > 0 {
		return false, &ValidationFailure{Errors: errs}
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	previous := s.prospects[idx].Status
	s.prospects[idx].Status = status
	updated := s.prospects[idx]
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, queue.EventStatusChanged, updated, previous)
	return true, nil
}

// Persist writes the full list to the slot.
func (s *ProspectStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncErr = s.writeLocked(ctx)
	return s.syncErr
}

// Flush retries the write if the last one failed. It reports whether a write
// was attempted.
func (s *ProspectStore) Flush(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.syncErr == nil {
		return false, nil
	}
	s.syncErr = s.writeLocked(ctx)
	return true, s.syncErr
}

// SyncError returns why the slot is behind the in-memory list, or nil when
// the last write succeeded.
func (s *ProspectStore) SyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncErr
}

// List returns a copy of the prospects, newest first.
func (s *ProspectStore) List() []entity.Prospect {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Prospect, len(s.prospects))
	copy(out, s.prospects)
	return out
}

func (s *ProspectStore) Get(id string) (*entity.Prospect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, entity.ErrProspectNotFound
	}
	p := s.prospects[idx]
	return &p, nil
}

func (s *ProspectStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prospects)
}

func (s *ProspectStore) indexLocked(id string) int {
	for i := range s.prospects {
		if s.prospects[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked is best effort: the mutation already happened in memory.
func (s *ProspectStore) persistLocked(ctx context.Context) {
	s.syncErr = s.writeLocked(ctx)
	if err := s.syncErr; err != nil {
		log.Printf("⚠️ CRITICAL: lista alterada em memória, mas falhou ao persistir: %v", err)
	}
}

func (s *ProspectStore) writeLocked(ctx context.Context) error {
	list := s.prospects
	if list == nil {
		list = []entity.Prospect{}
	}

	data, err := json.Marshal(list)
	if err != nil {
		return &TechnicalError{Code: CodeStorage, Message: "erro ao serializar prospects: " + err.Error(), Err: err}
	}

	if err := s.kv.Save(ctx, s.key, data); err != nil {
		return &TechnicalError{
			Code:    CodeStorage,
			Message: fmt.Sprintf("erro ao gravar chave %q: %v", s.key, err),
			Err:     err,
		}
	}
	return nil
}

func (s *ProspectStore) publish(ctx context.Context, eventType string, p entity.Prospect, previous entity.Status) {
	if s.publisher == nil {
		return
	}

	event := queue.ProspectEvent{
		Type:           eventType,
		ProspectID:     p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Company:        p.Company,
		Email:          p.Email,
		Status:         string(p.Status),
		PreviousStatus: string(previous),
		OccurredAt:     s.now(),
	}

	if err := s.publisher.PublishProspectEvent(ctx, event); err != nil {
		log.Printf("⚠️ Evento %s não publicado para %s: %v", eventType, p.ID, err)
	}
}
