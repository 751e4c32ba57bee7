package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/roach88/camellia/internal/codec"
	"github.com/roach88/camellia/internal/journal"
	"github.com/roach88/camellia/internal/model"
)

// Data file names inside the data directory.
const (
	UsersFile    = "users.json"
	ProductsFile = "products.json"
	OrdersFile   = "orders.json"
)

// DefaultDir is the data directory used when none is configured.
const DefaultDir = "data"

// Journal receives order events after they are persisted.
// *journal.Journal satisfies it.
type Journal interface {
	Append(ctx context.Context, ev journal.Event) (int64, error)
	Close() error
}

// Store is the repository. Create one with Open.
type Store struct {
	mu sync.RWMutex

	dir     string
	log     *slog.Logger
	now     func() time.Time
	ids     model.IDGenerator
	journal Journal

	users    []*model.User
	products []*model.Product
	orders   []*model.Order
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the wall clock used for order creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the order id generator.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithJournal records order events to j. The store closes j on Close.
func WithJournal(j Journal) Option {
	return func(s *Store) { s.journal = j }
}

// errNoData means users.json or products.json does not exist yet.
var errNoData = errors.New("data files not found")

// Open loads the repository from dir, seeding or recovering as needed.
func Open(dir string, opts ...Option) (*Store, error) {
	s := &Store{
		dir: dir,
		log: slog.Default(),
		now: time.Now,
		ids: model.UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	err := s.load()
	switch {
	case err == nil:
		s.log.Debug("data loaded",
			"dir", dir,
			"users", len(s.users),
			"products", len(s.products),
			"orders", len(s.orders))
		return s, nil
	case errors.Is(err, errNoData):
		s.log.Info("no data found, seeding defaults", "dir", dir)
	default:
		s.log.Warn("data unreadable, reseeding defaults", "dir", dir, "error", err)
	}

	s.quarantine()
	s.seed()
	if err := s.flushAll(); err != nil {
		return nil, fmt.Errorf("write seed data: %w", err)
	}
	return s, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// load replaces the in-memory collections with the file contents.
// State is only assigned once every file has decoded.
func (s *Store) load() error {
	usersData, err := readOptional(s.path(UsersFile))
	if err != nil {
		return err
	}
	productsData, err := readOptional(s.path(ProductsFile))
	if err != nil {
		return err
	}
	if usersData == nil || productsData == nil {
		return errNoData
	}
	ordersData, err := readOptional(s.path(OrdersFile))
	if err != nil {
		return err
	}

	users, err := codec.DecodeUsers(usersData)
	if err != nil {
		return fmt.Errorf("load %s: %w", UsersFile, err)
	}
	products, err := codec.DecodeProducts(productsData)
	if err != nil {
		return fmt.Errorf("load %s: %w", ProductsFile, err)
	}

	orders := []*model.Order{}
	if ordersData != nil {
		byID := make(map[string]*model.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}
		orders, err = codec.DecodeOrders(ordersData, func(id string) *model.Product { return byID[id] })
		if err != nil {
			return fmt.Errorf("load %s: %w", OrdersFile, err)
		}
	}

	s.users, s.products, s.orders = users, products, orders
	return nil
}

// readOptional returns nil, nil when path does not exist.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// quarantine moves existing data files aside before they are overwritten
// by the seed.
func (s *Store) quarantine() {
	for _, name := range []string{UsersFile, ProductsFile, OrdersFile} {
		p := s.path(name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.Rename(p, p+".bak"); err != nil {
			s.log.Warn("could not move data file aside", "path", p, "error", err)
			continue
		}
		s.log.Warn("moved data file aside", "path", p, "backup", p+".bak")
	}
}

// Close writes every collection and closes the journal.
func (s *Store) Close() error {
	err := s.Flush()
	if s.journal != nil {
		if jerr := s.journal.Close(); jerr != nil && err == nil {
			err = fmt.Errorf("close journal: %w", jerr)
		}
	}
	return err
}

// record appends an order event to the journal. Journal failures are
// logged and never fail the calling operation.
func (s *Store) record(ev journal.Event) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.Append(context.Background(), ev); err != nil {
		s.log.Error("journal append failed", "order", ev.OrderID, "kind", ev.Kind, "error", err)
	}
}
