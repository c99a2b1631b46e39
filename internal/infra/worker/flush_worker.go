package worker

import (
	"context"
	"log"
	"time"
)

// Flusher is implemented by *usecase.ProspectStore.
type Flusher interface {
	Flush(ctx context.Context) (bool, error)
}

// FlushWorker retries writes of the prospect list that failed during a
// mutation, so the slot catches up once storage is back.
type FlushWorker struct {
	store        Flusher
	tickInterval time.Duration
}

func NewFlushWorker(store Flusher, tickInterval time.Duration) *FlushWorker {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Second
	}
	return &FlushWorker{
		store:        store,
		tickInterval: tickInterval,
	}
}

func (w *FlushWorker) Start(ctx context.Context) {
	log.Printf("🕒 Flush Worker iniciado (a cada %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// última tentativa antes de sair
			w.flush(context.Background())
			log.Println("⚠️ Flush Worker encerrado")
			return
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *FlushWorker) flush(ctx context.Context) {
	attempted, err := w.store.Flush(ctx)
	if !attempted {
		return
	}
	if err != nil {
		log.Printf("❌ Lista de prospects ainda não persistida: %v", err)
		return
	}
	log.Println("✅ Lista de prospects persistida após falha anterior")
}
