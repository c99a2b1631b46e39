// Package filestore keeps each key as a JSON file in a directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/xavierca1/prospector/internal/entity"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

type Store struct {
	Dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("erro ao criar diretório %s: %w", dir, err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler %s: %w", path, err)
	}
	return data, nil
}

// Save replaces the file atomically so a crash never leaves half a list.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.Dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("erro ao criar arquivo temporário: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("erro ao escrever %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", path, err)
	}
	return nil
}

// Ping verifica se o diretório continua acessível.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s não é um diretório", s.Dir)
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("chave inválida: %q", key)
	}
	return filepath.Join(s.Dir, key+".json"), nil
}
