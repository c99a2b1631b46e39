package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/xavierca1/prospector/internal/config"
	"github.com/xavierca1/prospector/internal/entity"
	"github.com/xavierca1/prospector/internal/infra/database"
	"github.com/xavierca1/prospector/internal/infra/filestore"
	"github.com/xavierca1/prospector/internal/infra/mail"
	"github.com/xavierca1/prospector/internal/infra/queue"
	"github.com/xavierca1/prospector/internal/usecase"
)

// slot is the key-value backend the store persists into. Both the file store
// and the Postgres repository satisfy it.
type slot interface {
	entity.KeyValueStore
	Ping(ctx context.Context) error
}

type backend struct {
	cfg    *config.Config
	slot   slot
	store  *usecase.ProspectStore
	db     *sql.DB
	rabbit *queue.RabbitMQ
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storeDirFlag != "" {
		cfg.Store.Driver = config.DriverFile
		cfg.Store.Dir = storeDirFlag
	}
	return cfg, nil
}

func openSlot(ctx context.Context, cfg config.StoreConfig) (slot, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewKVRepository(db, cfg.Table)
		if cfg.Migrate {
			if err := repo.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("failed to create kv table: %w", err)
			}
		}
		return repo, db, nil
	default:
		fs, err := filestore.New(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	}
}

// openBackend loads config, connects the optional broker and loads the
// persisted list. An unreachable broker only disables activity events.
func openBackend(ctx context.Context) (*backend, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s, db, err := openSlot(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	b := &backend{cfg: cfg, slot: s, db: db}

	// nil interface, not a typed nil, when there is no broker
	var publisher usecase.EventPublisher
	if cfg.RabbitMQURL != "" {
		rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("⚠️ RabbitMQ indisponível, eventos desativados: %v", err)
		} else {
			b.rabbit = rabbit
			publisher = queue.NewProducer(rabbit.Ch)
		}
	}

	b.store = usecase.NewProspectStore(s, publisher)
	b.store.Initialize(ctx)

	return b, nil
}

func (b *backend) Close() {
	if b.rabbit != nil {
		b.rabbit.Close()
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			log.Printf("⚠️ Erro ao fechar conexão com o banco: %v", err)
		}
	}
}

// mailSender returns nil when no SMTP host is configured.
func (b *backend) mailSender() *mail.EmailSender {
	m := b.cfg.Mail
	if m.Host == "" {
		return nil
	}
	return mail.NewEmailSender(m.Host, m.Port, m.User, m.Password, m.From, m.NotifyTo)
}
