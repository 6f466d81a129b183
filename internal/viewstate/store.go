package viewstate

import (
	"context"
	"sync"

	apperrors "github.com/contesttracker/tracker/internal/errors"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

// Slices of state that are fetched independently
const (
	SliceCompetitions = "competitions"
	SliceParticipants = "participants"
)

// Store owns one session's State and applies the fetch/reset rules.
//
// Each fetch takes a token for its slice before the network call. When the
// response arrives it is applied only if no newer fetch for that slice was
// issued in the meantime; otherwise it is discarded.
type Store struct {
	api contestapi.Client
	log logger.Logger

	mu       sync.Mutex
	state    State
	compSeq  uint64
	partSeq  uint64
	onChange func(State)
	onStale  func(slice string)
}

// Option configures a Store
type Option func(*Store)

// WithOnChange registers a callback receiving every new snapshot
func WithOnChange(fn func(State)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// WithStaleHook registers a callback invoked when a response is discarded as stale
func WithStaleHook(fn func(slice string)) Option {
	return func(s *Store) {
		s.onStale = fn
	}
}

// NewStore creates a logged-out store
func NewStore(api contestapi.Client, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		api:   api,
		log:   log,
		state: Initial(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// commit replaces the state under s.mu and returns the snapshot to publish
func (s *Store) commit(next State) State {
	next.Version = s.state.Version + 1
	s.state = next
	return next.Clone()
}

func (s *Store) publish(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

func (s *Store) stale(slice string) {
	s.log.Debug("Discarding stale response", "slice", slice)
	if s.onStale != nil {
		s.onStale(slice)
	}
}

// LoginSucceeded records the user and loads competitions for the current filters
func (s *Store) LoginSucceeded(ctx context.Context, user models.User) {
	s.mu.Lock()
	st := s.commit(WithUser(s.state, user))
	filters := s.state.Filters
	token := s.nextCompToken()
	s.mu.Unlock()
	s.publish(st)

	s.loadCompetitions(ctx, filters, token)
}

// SetFilters replaces the filters. When logged in the competition list is
// reloaded, and the selection and participants are reset whatever the outcome,
// even if the filters did not change.
func (s *Store) SetFilters(ctx context.Context, f models.Filters) error {
	if err := f.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrValidation, "invalid filters")
	}

	s.mu.Lock()
	st := s.commit(WithFilters(s.state, f))
	loggedIn := s.state.LoggedIn()
	var token uint64
	if loggedIn {
		// taken with the filters so fetches apply in the order filters were set
		token = s.nextCompToken()
	}
	s.mu.Unlock()
	s.publish(st)

	if loggedIn {
		s.loadCompetitions(ctx, f, token)
	}
	return nil
}

// SelectCompetition selects the loaded competition with id and fetches its
// participants. A nil id clears the selection without fetching and leaves the
// participant list as it is.
func (s *Store) SelectCompetition(ctx context.Context, id *int) error {
	s.mu.Lock()
	if id == nil {
		// a pending fetch for the old selection must not land after the clear
		s.partSeq++
		st := s.commit(WithSelection(s.state, nil))
		s.mu.Unlock()
		s.publish(st)
		return nil
	}

	comp, ok := s.state.FindCompetition(*id)
	if !ok {
		s.mu.Unlock()
		return apperrors.Validationf("competition %d is not in the current list", *id)
	}
	s.partSeq++
	token := s.partSeq
	st := s.commit(WithSelection(s.state, &comp))
	s.mu.Unlock()
	s.publish(st)

	participants, err := s.api.ListParticipantsForCompetition(ctx, comp.ID)
	if err != nil {
		s.log.Error("Error fetching participants", "competition_id", comp.ID, "error", err)
		participants = []models.Participant{}
	}

	s.mu.Lock()
	if token != s.partSeq {
		s.mu.Unlock()
		s.stale(SliceParticipants)
		return nil
	}
	st = s.commit(ParticipantsLoaded(s.state, participants))
	s.mu.Unlock()
	s.publish(st)
	return nil
}

// ParticipantAdded reloads the unfiltered competition list and clears the
// selection and participants. The filters themselves are left unchanged.
func (s *Store) ParticipantAdded(ctx context.Context) {
	s.mu.Lock()
	token := s.nextCompToken()
	s.mu.Unlock()

	s.loadCompetitions(ctx, models.DefaultFilters(), token)
}

// nextCompToken issues a competitions token. Callers hold s.mu.
func (s *Store) nextCompToken() uint64 {
	s.compSeq++
	return s.compSeq
}

// loadCompetitions fetches the list for f and applies it under token, or an
// empty list on failure. Either way the selection and participants are cleared.
func (s *Store) loadCompetitions(ctx context.Context, f models.Filters, token uint64) {
	competitions, err := fetchCompetitions(ctx, s.api, f)
	if err != nil {
		s.log.Error("Error fetching competitions",
			"operation", ChooseListOperation(f).String(),
			"type", string(f.Type),
			"age", string(f.Age),
			"error", err,
		)
		competitions = []models.Competition{}
	}

	s.mu.Lock()
	if token != s.compSeq {
		s.mu.Unlock()
		s.stale(SliceCompetitions)
		return
	}
	// participants are being reset, so any participant fetch in flight is stale
	s.partSeq++
	st := s.commit(CompetitionsLoaded(s.state, competitions))
	s.mu.Unlock()
	s.publish(st)
}
