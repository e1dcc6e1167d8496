package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pricecollect/internal/core/domain"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driven"
	"github.com/custodia-labs/pricecollect/internal/core/ports/driving"
	"github.com/custodia-labs/pricecollect/internal/logger"
	"github.com/custodia-labs/pricecollect/internal/pricing"
)

// Ensure ObservationService implements the interface.
var _ driving.ObservationService = (*ObservationService)(nil)

// Confirm outcomes reported to metrics.
const (
	outcomeOK          = "ok"
	outcomeInvalid     = "invalid"
	outcomeNotFound    = "not_found"
	outcomeDuplicate   = "duplicate"
	outcomeUnpersisted = "unpersisted"
)

// ObservationService owns the observation list of the current session.
//
// The list is ordered by recording time and never holds two observations
// with the same product key; a second confirm for a product is rejected
// with domain.ErrDuplicateProduct. Every mutation is followed by a persist.
// Persists are serialized: one write is in flight at a time and later
// writes wait behind it rather than cancelling it.
type ObservationService struct {
	resolver driving.ResolverService
	store    driven.KeyValueStore
	locator  driven.Locator
	metrics  driven.Metrics
	key      string
	stores   []string
	log      *slog.Logger
	now      func() time.Time
	newID    func() string

	mu      sync.Mutex
	list    []domain.Observation
	keys    map[string]struct{}
	session domain.Session

	persistMu sync.Mutex
}

// NewObservationService creates an observation service.
// The locator is optional. An empty stores list accepts any competitor.
func NewObservationService(
	resolver driving.ResolverService,
	store driven.KeyValueStore,
	locator driven.Locator,
	key string,
	stores []string,
) *ObservationService {
	if key == "" {
		key = domain.DefaultAppSettings().Storage.Key
	}
	s := &ObservationService{
		resolver: resolver,
		store:    store,
		locator:  locator,
		metrics:  nopMetrics{},
		key:      key,
		stores:   append([]string(nil), stores...),
		log:      logger.Component("observations"),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
		keys:     make(map[string]struct{}),
	}
	s.session = domain.Session{ID: s.newID(), StartedAt: s.now()}
	return s
}

// SetMetrics sets the metrics recorder.
func (s *ObservationService) SetMetrics(m driven.Metrics) {
	s.metrics = metricsOrNop(m)
}

// StartSession begins a new session and takes its location snapshot.
// A locator failure leaves the session without a location.
func (s *ObservationService) StartSession(ctx context.Context) domain.Session {
	session := domain.Session{ID: s.newID(), StartedAt: s.now()}
	if s.locator != nil {
		loc, err := s.locator.Locate(ctx)
		switch {
		case err != nil:
			s.log.Warn("location unavailable, continuing without it", "error", err)
		case !loc.Valid():
			s.log.Warn("ignoring out of range location", "location", loc.String())
		default:
			session.Location = &loc
		}
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.log.Debug("session started", "session", session.ID, "located", session.Location != nil)
	return session
}

// Session returns the current session.
func (s *ObservationService) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Stores returns the configured store names.
func (s *ObservationService) Stores() []string {
	return append([]string(nil), s.stores...)
}

// List returns a copy of the observations in recording order.
func (s *ObservationService) List() []domain.Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Observation(nil), s.list...)
}

// Confirm validates the input, resolves the product and appends an
// observation. Validation, not-found and duplicate failures leave the list
// untouched. A persistence failure keeps the new observation in memory and
// returns it together with an error matching domain.ErrPersistence.
func (s *ObservationService) Confirm(ctx context.Context, req domain.ConfirmRequest) (domain.Observation, error) {
	competitor := strings.TrimSpace(req.Competitor)
	query := strings.TrimSpace(req.Query)

	verr := &domain.ValidationError{}
	if competitor == "" {
		verr.Add("competitor", "required")
	}
	if query == "" {
		verr.Add("query", "required")
	}
	price, err := pricing.ParsePrice(req.RawPrice)
	if err != nil {
		verr.Add("price", err.Error())
	}
	if req.Location != nil && !req.Location.Valid() {
		verr.Add("location", domain.ErrInvalidLocation.Error())
	}
	if verr.HasErrors() {
		s.metrics.ObservationConfirmed(outcomeInvalid)
		return domain.Observation{}, verr
	}

	store, ok := s.matchStore(competitor)
	if !ok {
		s.metrics.ObservationConfirmed(outcomeInvalid)
		return domain.Observation{}, fmt.Errorf("%w: %q", domain.ErrUnknownStore, competitor)
	}

	record, found := s.resolver.Resolve(req.Field, query)
	if !found || record.Key() == "" {
		s.metrics.ObservationConfirmed(outcomeNotFound)
		return domain.Observation{}, fmt.Errorf("%w: %s %q", domain.ErrProductNotFound, req.Field, query)
	}

	obs := domain.Observation{
		Competitor:  store,
		ProductKey:  record.Key(),
		PriceMinor:  price,
		ProductName: strings.TrimSpace(record.Description),
		Brand:       strings.TrimSpace(record.Brand),
		RecordedAt:  s.now(),
	}

	s.mu.Lock()
	if _, dup := s.keys[obs.ProductKey]; dup {
		s.mu.Unlock()
		s.metrics.ObservationConfirmed(outcomeDuplicate)
		return domain.Observation{}, fmt.Errorf("%w: %s", domain.ErrDuplicateProduct, obs.ProductKey)
	}
	loc := req.Location
	if loc == nil {
		loc = s.session.Location
	}
	if loc != nil {
		l := *loc
		obs.Location = &l
	}
	s.list = append(s.list, obs)
	s.keys[obs.ProductKey] = struct{}{}
	s.mu.Unlock()

	s.log.Debug("observation recorded", "product", obs.ProductKey, "store", obs.Competitor, "price", obs.PriceMinor)

	if err := s.Persist(ctx); err != nil {
		s.metrics.ObservationConfirmed(outcomeUnpersisted)
		return obs, err
	}
	s.metrics.ObservationConfirmed(outcomeOK)
	return obs, nil
}

// matchStore returns the configured spelling of competitor.
func (s *ObservationService) matchStore(competitor string) (string, bool) {
	if len(s.stores) == 0 {
		return competitor, true
	}
	for _, name := range s.stores {
		if strings.EqualFold(name, competitor) {
			return name, true
		}
	}
	return "", false
}

// Persist writes the current list to durable storage.
// Calls are serialized and each write captures the list as it is when the
// write starts, so a later persist always carries every earlier mutation.
// The write is not cancelled when ctx is.
func (s *ObservationService) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	snapshot := domain.ObservationSnapshot{
		Version:      domain.ObservationSnapshotVersion,
		Session:      s.session,
		Observations: append([]domain.Observation{}, s.list...),
	}
	s.mu.Unlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", domain.ErrPersistence, err)
	}

	start := s.now()
	err = s.store.Set(context.WithoutCancel(ctx), s.key, string(data))
	s.metrics.PersistCompleted(err == nil, s.now().Sub(start))
	if err != nil {
		s.log.Warn("persist failed, observations kept in memory",
			"key", s.key, "observations", len(snapshot.Observations), "error", err)
		return fmt.Errorf("%w: write %s: %w", domain.ErrPersistence, s.key, err)
	}
	return nil
}

// Restore replaces the in-memory list with the last persisted snapshot.
// Nothing persisted yields an empty list and no error. An unreadable
// snapshot also yields an empty list, with an error matching
// domain.ErrPersistence.
func (s *ObservationService) Restore(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.replace(nil, nil)

	value, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", domain.ErrPersistence, s.key, err)
	}
	if !ok || strings.TrimSpace(value) == "" {
		s.log.Debug("nothing persisted, starting with an empty list", "key", s.key)
		return nil
	}

	var snapshot domain.ObservationSnapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		s.log.Warn("persisted observations unreadable, starting empty", "key", s.key, "error", err)
		return fmt.Errorf("%w: decode %s: %w", domain.ErrPersistence, s.key, err)
	}

	var session *domain.Session
	if snapshot.Session.ID != "" {
		session = &snapshot.Session
	}
	dropped := s.replace(snapshot.Observations, session)
	if dropped > 0 {
		s.log.Warn("dropped duplicate observations from snapshot", "dropped", dropped)
	}
	s.log.Debug("observations restored", "count", len(snapshot.Observations)-dropped)
	return nil
}

// replace swaps in a list, keeping the first observation per product key.
// It returns how many observations were dropped.
func (s *ObservationService) replace(list []domain.Observation, session *domain.Session) int {
	keys := make(map[string]struct{}, len(list))
	kept := make([]domain.Observation, 0, len(list))
	for _, obs := range list {
		if _, dup := keys[obs.ProductKey]; dup {
			continue
		}
		keys[obs.ProductKey] = struct{}{}
		kept = append(kept, obs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = kept
	s.keys = keys
	if session != nil {
		s.session = *session
	}
	return len(list) - len(kept)
}

// Reset clears the list, removes the persisted snapshot and starts a new
// session. The in-memory list is cleared even if the removal fails.
func (s *ObservationService) Reset(ctx context.Context) error {
	s.persistMu.Lock()
	s.replace(nil, nil)
	err := s.store.Remove(context.WithoutCancel(ctx), s.key)
	s.persistMu.Unlock()

	s.StartSession(ctx)

	if err != nil {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrPersistence, s.key, err)
	}
	return nil
}
