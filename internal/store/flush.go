package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/camellia/internal/codec"
)

// Flush writes all three collections: users, then products, then orders.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushAll()
}

func (s *Store) flushAll() error {
	if err := s.flushUsers(); err != nil {
		return err
	}
	if err := s.flushProducts(); err != nil {
		return err
	}
	return s.flushOrders()
}

func (s *Store) flushUsers() error {
	return s.writeFile(UsersFile, codec.EncodeUsers(s.users))
}

func (s *Store) flushProducts() error {
	return s.writeFile(ProductsFile, codec.EncodeProducts(s.products))
}

func (s *Store) flushOrders() error {
	return s.writeFile(OrdersFile, codec.EncodeOrders(s.orders))
}

func (s *Store) writeFile(name string, data []byte) error {
	p := s.path(name)
	if err := writeFileAtomic(p, data); err != nil {
		s.log.Error("failed to save data file", "path", p, "error", err)
		return &FlushError{Path: p, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place.
func writeFileAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
