package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/pkg/metrics"
)

// Key prefixes. One document per key, JSON-encoded.
const (
	keyAthlete   = "athlete/"
	keyPlan      = "plan/"
	keyMacro     = "macro/"
	keySummaries = "summaries/"
	keyChat      = "chat/"
	keySidecar   = "sidecar/"
)

// BadgerStore is the badger-backed DurableStore.
type BadgerStore struct {
	db          *badger.DB
	maxDocBytes int
}

// BadgerOption applies a configuration option to the BadgerStore.
type BadgerOption func(*BadgerStore)

// WithBadgerMaxDocumentBytes overrides the per-document size ceiling.
func WithBadgerMaxDocumentBytes(n int) BadgerOption {
	return func(s *BadgerStore) {
		if n > 0 {
			s.maxDocBytes = n
		}
	}
}

// OpenBadger opens (or creates) a badger store at dir. An empty dir opens an
// in-memory database, used by tests that want real transaction semantics.
func OpenBadger(dir string, opts ...BadgerOption) (*BadgerStore, error) {
	var bopts badger.Options
	if dir == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(dir)
	}
	bopts = bopts.WithLogger(nil)

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	s := &BadgerStore{db: db, maxDocBytes: MaxDocumentBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

func (s *BadgerStore) get(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(raw []byte) error {
			return json.Unmarshal(raw, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) GetAthlete(ctx context.Context, id string) (*model.Athlete, error) {
	defer observe("get_athlete", time.Now())
	var a model.Athlete
	if err := s.get(keyAthlete+id, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *BadgerStore) GetAllAthletes(ctx context.Context) ([]*model.Athlete, error) {
	defer observe("get_all_athletes", time.Now())
	var out []*model.Athlete
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyAthlete)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var a model.Athlete
			err := it.Item().Value(func(raw []byte) error {
				return json.Unmarshal(raw, &a)
			})
			if err != nil {
				return err
			}
			out = append(out, &a)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan athletes: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) UpdateAthlete(ctx context.Context, a *model.Athlete) error {
	defer observe("update_athlete", time.Now())
	if err := validateAthlete(a); err != nil {
		return err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode athlete %s: %w", a.ID, err)
	}
	if len(raw) > s.maxDocBytes {
		clone := *a
		shed := shedOversize(&clone)
		if shed == nil {
			metrics.RecordStoreError("update_athlete")
			return fmt.Errorf("athlete %s: %w", a.ID, ErrDocumentTooLarge)
		}
		raw, err = json.Marshal(&clone)
		if err != nil {
			return fmt.Errorf("encode athlete %s: %w", a.ID, err)
		}
		if len(raw) > s.maxDocBytes {
			metrics.RecordStoreError("update_athlete")
			return fmt.Errorf("athlete %s: %w", a.ID, ErrDocumentTooLarge)
		}
		metrics.RecordStoreOffload()
		if err := s.appendSidecar(a.ID, shed); err != nil {
			return err
		}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyAthlete+a.ID), raw)
	})
	if err != nil {
		metrics.RecordStoreError("update_athlete")
		return fmt.Errorf("set athlete %s: %w", a.ID, err)
	}
	return nil
}

func (s *BadgerStore) appendSidecar(id string, shed []model.AnalysisRecord) error {
	var existing []model.AnalysisRecord
	if err := s.get(keySidecar+id, &existing); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.set(keySidecar+id, append(existing, shed...))
}

func (s *BadgerStore) GetWeeklyPlan(ctx context.Context, athleteID string) (*model.WeeklyPlan, error) {
	defer observe("get_plan", time.Now())
	var p model.WeeklyPlan
	if err := s.get(keyPlan+athleteID, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *BadgerStore) UpdateWeeklyPlan(ctx context.Context, p *model.WeeklyPlan) error {
	defer observe("update_plan", time.Now())
	if err := validatePlan(p); err != nil {
		return err
	}
	return s.set(keyPlan+p.AthleteID, p)
}

func (s *BadgerStore) GetMacrocycle(ctx context.Context, athleteID string) (*model.Macrocycle, error) {
	defer observe("get_macro", time.Now())
	var m model.Macrocycle
	if err := s.get(keyMacro+athleteID, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *BadgerStore) SaveMacrocycle(ctx context.Context, athleteID string, m *model.Macrocycle) error {
	defer observe("save_macro", time.Now())
	if m == nil || athleteID == "" {
		return fmt.Errorf("%w: missing macrocycle or athlete id", ErrSchemaViolation)
	}
	return s.set(keyMacro+athleteID, m)
}

func (s *BadgerStore) GetWeeklySummaries(ctx context.Context, athleteID string) ([]model.WeeklySummary, error) {
	defer observe("get_summaries", time.Now())
	var out []model.WeeklySummary
	if err := s.get(keySummaries+athleteID, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *BadgerStore) SaveWeeklySummary(ctx context.Context, athleteID string, sum model.WeeklySummary) error {
	defer observe("save_summary", time.Now())
	if athleteID == "" || sum.Week == "" {
		return fmt.Errorf("%w: missing summary week or athlete id", ErrSchemaViolation)
	}
	existing, err := s.GetWeeklySummaries(context.Background(), athleteID)
	if err != nil {
		return err
	}
	return s.set(keySummaries+athleteID, append(existing, sum))
}

func (s *BadgerStore) SaveChatMessage(ctx context.Context, athleteID string, msg model.ChatMessage) error {
	defer observe("save_chat", time.Now())
	if athleteID == "" || msg.Content == "" {
		return fmt.Errorf("%w: missing chat content or athlete id", ErrSchemaViolation)
	}
	return s.set(keyChat+athleteID+"/"+msg.ID, msg)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Milliseconds()))
}
