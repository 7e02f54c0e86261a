package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/athlos-ai/athlos/internal/domain/model"
)

// MemoryStore is an in-process DurableStore. It honors the same schema
// validation and size limit as the badger-backed store, which makes it the
// reference implementation for tests.
type MemoryStore struct {
	mu        sync.RWMutex
	athletes  map[string][]byte
	plans     map[string][]byte
	macros    map[string][]byte
	summaries map[string][]model.WeeklySummary
	chats     map[string][]model.ChatMessage
	sidecars  map[string][]model.AnalysisRecord

	maxDocBytes int
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMaxDocumentBytes overrides the per-document size ceiling.
func WithMaxDocumentBytes(n int) MemoryOption {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxDocBytes = n
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		athletes:    make(map[string][]byte),
		plans:       make(map[string][]byte),
		macros:      make(map[string][]byte),
		summaries:   make(map[string][]model.WeeklySummary),
		chats:       make(map[string][]model.ChatMessage),
		sidecars:    make(map[string][]model.AnalysisRecord),
		maxDocBytes: MaxDocumentBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts an athlete bypassing the caller-facing write path. Test helper.
func (s *MemoryStore) Seed(a *model.Athlete) error {
	return s.UpdateAthlete(context.Background(), a)
}

func (s *MemoryStore) GetAthlete(ctx context.Context, id string) (*model.Athlete, error) {
	s.mu.RLock()
	raw, ok := s.athletes[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("athlete %s: %w", id, ErrNotFound)
	}
	var a model.Athlete
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode athlete %s: %w", id, err)
	}
	return &a, nil
}

func (s *MemoryStore) GetAllAthletes(ctx context.Context) ([]*model.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Athlete, 0, len(s.athletes))
	for id, raw := range s.athletes {
		var a model.Athlete
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decode athlete %s: %w", id, err)
		}
		out = append(out, &a)
	}
	return out, nil
}

func (s *MemoryStore) UpdateAthlete(ctx context.Context, a *model.Athlete) error {
	if err := validateAthlete(a); err != nil {
		return err
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode athlete %s: %w", a.ID, err)
	}
	if len(raw) > s.maxDocBytes {
		// Offload-and-retry: shed the analysis history to a sidecar once.
		clone := *a
		shed := shedOversize(&clone)
		if shed == nil {
			return fmt.Errorf("athlete %s: %w", a.ID, ErrDocumentTooLarge)
		}
		raw, err = json.Marshal(&clone)
		if err != nil {
			return fmt.Errorf("encode athlete %s: %w", a.ID, err)
		}
		if len(raw) > s.maxDocBytes {
			return fmt.Errorf("athlete %s: %w", a.ID, ErrDocumentTooLarge)
		}
		s.mu.Lock()
		s.sidecars[a.ID] = append(s.sidecars[a.ID], shed...)
		s.athletes[a.ID] = raw
		s.mu.Unlock()
		return nil
	}
	s.mu.Lock()
	s.athletes[a.ID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetWeeklyPlan(ctx context.Context, athleteID string) (*model.WeeklyPlan, error) {
	s.mu.RLock()
	raw, ok := s.plans[athleteID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("plan for %s: %w", athleteID, ErrNotFound)
	}
	var p model.WeeklyPlan
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode plan for %s: %w", athleteID, err)
	}
	return &p, nil
}

func (s *MemoryStore) UpdateWeeklyPlan(ctx context.Context, p *model.WeeklyPlan) error {
	if err := validatePlan(p); err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode plan for %s: %w", p.AthleteID, err)
	}
	s.mu.Lock()
	s.plans[p.AthleteID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetMacrocycle(ctx context.Context, athleteID string) (*model.Macrocycle, error) {
	s.mu.RLock()
	raw, ok := s.macros[athleteID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("macrocycle for %s: %w", athleteID, ErrNotFound)
	}
	var m model.Macrocycle
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode macrocycle for %s: %w", athleteID, err)
	}
	return &m, nil
}

func (s *MemoryStore) SaveMacrocycle(ctx context.Context, athleteID string, m *model.Macrocycle) error {
	if m == nil || athleteID == "" {
		return fmt.Errorf("%w: missing macrocycle or athlete id", ErrSchemaViolation)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode macrocycle for %s: %w", athleteID, err)
	}
	s.mu.Lock()
	s.macros[athleteID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetWeeklySummaries(ctx context.Context, athleteID string) ([]model.WeeklySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.WeeklySummary, len(s.summaries[athleteID]))
	copy(out, s.summaries[athleteID])
	return out, nil
}

func (s *MemoryStore) SaveWeeklySummary(ctx context.Context, athleteID string, sum model.WeeklySummary) error {
	if athleteID == "" || sum.Week == "" {
		return fmt.Errorf("%w: missing summary week or athlete id", ErrSchemaViolation)
	}
	s.mu.Lock()
	s.summaries[athleteID] = append(s.summaries[athleteID], sum)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveChatMessage(ctx context.Context, athleteID string, msg model.ChatMessage) error {
	if athleteID == "" || msg.Content == "" {
		return fmt.Errorf("%w: missing chat content or athlete id", ErrSchemaViolation)
	}
	s.mu.Lock()
	s.chats[athleteID] = append(s.chats[athleteID], msg)
	s.mu.Unlock()
	return nil
}

// ChatLog returns the persisted chat transcript for an athlete. Test helper.
func (s *MemoryStore) ChatLog(athleteID string) []model.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ChatMessage, len(s.chats[athleteID]))
	copy(out, s.chats[athleteID])
	return out
}

// Sidecar returns analysis records shed by offload-and-retry. Test helper.
func (s *MemoryStore) Sidecar(athleteID string) []model.AnalysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AnalysisRecord, len(s.sidecars[athleteID]))
	copy(out, s.sidecars[athleteID])
	return out
}
