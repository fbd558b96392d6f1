package badgerstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/hupe1980/annrecall/dataset"
)

var (
	// ErrNotEmpty is returned by Import when the store already holds vectors.
	ErrNotEmpty = errors.New("badgerstore: store is not empty")
	// ErrCorrupt is returned when a stored record cannot be decoded.
	ErrCorrupt = errors.New("badgerstore: corrupt record")
)

var (
	keyDim       = []byte("m/dim")
	prefixVector = []byte("v/")
)

// Options configures Open.
type Options struct {
	InMemory   bool
	SyncWrites bool
	Logger     *slog.Logger
}

// WithInMemory keeps the database in memory; dir is ignored.
func WithInMemory() func(*Options) {
	return func(o *Options) { o.InMemory = true }
}

// WithSyncWrites fsyncs every write batch.
func WithSyncWrites() func(*Options) {
	return func(o *Options) { o.SyncWrites = true }
}

// WithLogger routes badger's internal logging to l.
func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) { o.Logger = l }
}

// Store is a dataset persisted in Badger.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store in dir.
func Open(dir string, optFns ...func(*Options)) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	bopts := badger.DefaultOptions(dir).
		WithSyncWrites(opts.SyncWrites).
		WithLogger(nil)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if opts.Logger != nil {
		bopts = bopts.WithLogger(&badgerLogger{l: opts.Logger}).WithLoggingLevel(badger.WARNING)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset drops every record.
func (s *Store) Reset() error {
	return s.db.DropAll()
}

// Len returns the number of stored vectors.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.PrefetchValues = false
		opt.Prefix = prefixVector
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Dimension returns the stored dimension, or 0 when nothing has been imported.
func (s *Store) Dimension() (int, error) {
	dim := 0
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyDim)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 4 {
				return ErrCorrupt
			}
			dim = int(binary.BigEndian.Uint32(val))
			return nil
		})
	})
	return dim, err
}

// Import writes every vector of ds. The store must be empty.
func (s *Store) Import(ctx context.Context, ds dataset.Dataset) error {
	n, err := s.Len()
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrNotEmpty
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	dim := make([]byte, 4)
	binary.BigEndian.PutUint32(dim, uint32(ds.Dimension()))
	if err := wb.Set(keyDim, dim); err != nil {
		return err
	}

	i := 0
	for id, vec := range ds.All() {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		i++
		if err := wb.Set(vectorKey(id), encodeVector(vec)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Load reads all vectors into memory, in ascending identifier order.
func (s *Store) Load(ctx context.Context) (*dataset.Memory, error) {
	dim, err := s.Dimension()
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, dataset.ErrEmpty
	}

	m := dataset.NewMemory(dim)
	err = s.db.View(func(txn *badger.Txn) error {
		opt := badger.DefaultIteratorOptions
		opt.Prefix = prefixVector
		it := txn.NewIterator(opt)
		defer it.Close()

		var vec []float32
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := item.Key()
			if len(key) != len(prefixVector)+4 {
				return fmt.Errorf("%w: key %x", ErrCorrupt, key)
			}
			id := binary.BigEndian.Uint32(key[len(prefixVector):])

			if err := item.Value(func(val []byte) error {
				var derr error
				vec, derr = decodeVector(vec[:0], val)
				return derr
			}); err != nil {
				return err
			}
			if err := m.Add(id, vec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if m.Len() == 0 {
		return nil, dataset.ErrEmpty
	}
	return m, nil
}

func vectorKey(id uint32) []byte {
	key := make([]byte, len(prefixVector)+4)
	copy(key, prefixVector)
	binary.BigEndian.PutUint32(key[len(prefixVector):], id)
	return key
}

func encodeVector(vec []float32) []byte {
	out := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(f))
	}
	return out
}

func decodeVector(dst []float32, val []byte) ([]float32, error) {
	if len(val)%4 != 0 {
		return nil, fmt.Errorf("%w: value of %d bytes", ErrCorrupt, len(val))
	}
	for i := 0; i < len(val); i += 4 {
		dst = append(dst, math.Float32frombits(binary.LittleEndian.Uint32(val[i:])))
	}
	return dst, nil
}

// badgerLogger adapts slog to badger.Logger.
type badgerLogger struct {
	l *slog.Logger
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.l.Error(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.l.Info(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.l.Debug(fmt.Sprintf(format, args...), slog.String("component", "badger"))
}
