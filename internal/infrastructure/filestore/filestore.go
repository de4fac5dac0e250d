package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"dolarcaro-service/internal/application"
	"dolarcaro-service/internal/domain"

	"github.com/shopspring/decimal"
)

var _ application.HistoryStore = (*Store)(nil)

const latestFile = "latest.json"

// Store keeps one JSON file per record under <dir>/<key>/, named by
// timestamp so lexical order is chronological order, plus a
// latest.json sidecar for cheap reads. The sidecar is rewritten by the
// same Append that creates the record file, under the per-key lock, so
// the two views cannot drift.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create dir: %w", err)
	}
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.locks[key] = m
	return m
}

// fileRecord is the on-disk shape; decimals travel as strings.
type fileRecord struct {
	ProductKey        string    `json:"product_key"`
	DisplayName       string    `json:"display_name"`
	OriginPrice       string    `json:"origin_price"`
	ReferencePrice    string    `json:"reference_price"`
	ConvertedPrice    string    `json:"converted_price"`
	ExchangeRate      string    `json:"exchange_rate"`
	OriginFallback    bool      `json:"origin_fallback"`
	ReferenceFallback bool      `json:"reference_fallback"`
	StaleRate         bool      `json:"stale_rate"`
	OriginURL         string    `json:"origin_url"`
	ReferenceURL      string    `json:"reference_url"`
	Timestamp         time.Time `json:"timestamp"`
	CheckedAt         time.Time `json:"checked_at"`
}

func toFile(rec domain.PriceRecord, checkedAt time.Time) fileRecord {
	return fileRecord{
		ProductKey:        rec.ProductKey,
		DisplayName:       rec.DisplayName,
		OriginPrice:       rec.OriginPrice.String(),
		ReferencePrice:    rec.ReferencePrice.String(),
		ConvertedPrice:    rec.ConvertedPrice.String(),
		ExchangeRate:      rec.ExchangeRate.String(),
		OriginFallback:    rec.OriginFallback,
		ReferenceFallback: rec.ReferenceFallback,
		StaleRate:         rec.StaleRate,
		OriginURL:         rec.OriginURL,
		ReferenceURL:      rec.ReferenceURL,
		Timestamp:         rec.Timestamp,
		CheckedAt:         checkedAt,
	}
}

func (f fileRecord) record() (domain.PriceRecord, error) {
	parse := func(s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Decimal{}, errors.New("empty decimal")
		}
		return decimal.NewFromString(s)
	}
	origin, err := parse(f.OriginPrice)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	reference, err := parse(f.ReferencePrice)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	converted, err := parse(f.ConvertedPrice)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	rate, err := parse(f.ExchangeRate)
	if err != nil {
		return domain.PriceRecord{}, err
	}
	return domain.PriceRecord{
		ProductKey:        f.ProductKey,
		DisplayName:       f.DisplayName,
		OriginPrice:       origin,
		ReferencePrice:    reference,
		ConvertedPrice:    converted,
		ExchangeRate:      rate,
		OriginFallback:    f.OriginFallback,
		ReferenceFallback: f.ReferenceFallback,
		StaleRate:         f.StaleRate,
		OriginURL:         f.OriginURL,
		ReferenceURL:      f.ReferenceURL,
		Timestamp:         f.Timestamp,
	}, nil
}

func recordFileName(ts time.Time) string {
	return ts.UTC().Format("2006-01-02_15-04-05.000000000") + ".json"
}

func (s *Store) Append(_ context.Context, key string, rec domain.PriceRecord) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	keyDir := filepath.Join(s.dir, key)
	if err := os.MkdirAll(keyDir, 0o755); err != nil {
		return fmt.Errorf("filestore: create key dir: %w", err)
	}
	fr := toFile(rec, rec.Timestamp)
	if err := writeJSON(filepath.Join(keyDir, recordFileName(rec.Timestamp)), fr); err != nil {
		return err
	}
	return writeJSON(filepath.Join(keyDir, latestFile), fr)
}

func (s *Store) Latest(_ context.Context, key string) (domain.PriceRecord, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	fr, err := readJSON(filepath.Join(s.dir, key, latestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.PriceRecord{}, application.ErrNotFound
		}
		return domain.PriceRecord{}, err
	}
	return fr.record()
}

func (s *Store) History(_ context.Context, key string, limit int) ([]domain.PriceRecord, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	keyDir := filepath.Join(s.dir, key)
	entries, err := os.ReadDir(keyDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == latestFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	// Timestamped names sort chronologically; walk newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	out := make([]domain.PriceRecord, 0, limit)
	for _, name := range names {
		if len(out) >= limit {
			break
		}
		fr, err := readJSON(filepath.Join(keyDir, name))
		if err != nil {
			return nil, err
		}
		rec, err := fr.record()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) Touch(_ context.Context, key string, at time.Time) error {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	keyDir := filepath.Join(s.dir, key)
	fr, err := readJSON(filepath.Join(keyDir, latestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return application.ErrNotFound
		}
		return err
	}
	fr.CheckedAt = at
	if err := writeJSON(filepath.Join(keyDir, latestFile), fr); err != nil {
		return err
	}
	// Keep the newest record file in step with the sidecar.
	name := recordFileName(fr.Timestamp)
	if _, statErr := os.Stat(filepath.Join(keyDir, name)); statErr == nil {
		return writeJSON(filepath.Join(keyDir, name), fr)
	}
	return nil
}

func writeJSON(path string, fr fileRecord) error {
	b, err := json.MarshalIndent(fr, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("filestore: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("filestore: rename %s: %w", path, err)
	}
	return nil
}

func readJSON(path string) (fileRecord, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fileRecord{}, err
	}
	var fr fileRecord
	if err := json.Unmarshal(b, &fr); err != nil {
		return fileRecord{}, fmt.Errorf("filestore: decode %s: %w", path, err)
	}
	return fr, nil
}
