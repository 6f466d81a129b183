// Package viewstate holds the per-session view of competitions and participants
// and the rules for when that view is fetched, reset and re-fetched.
package viewstate

import "github.com/contesttracker/tracker/internal/models"

// State is an immutable snapshot of one session's view.
// Selected, when set, is always a member of Competitions.
type State struct {
	Version      uint64               `json:"version"`
	Filters      models.Filters       `json:"filters"`
	Competitions []models.Competition `json:"competitions"`
	Selected     *models.Competition  `json:"selectedCompetition"`
	Participants []models.Participant `json:"participants"`
	User         *models.User         `json:"user"`
}

// Initial is the logged-out state with unconstrained filters
func Initial() State {
	return State{
		Filters:      models.DefaultFilters(),
		Competitions: []models.Competition{},
		Participants: []models.Participant{},
	}
}

// LoggedIn reports whether a user is present
func (s State) LoggedIn() bool {
	return s.User != nil
}

// FindCompetition looks up a loaded competition by id
func (s State) FindCompetition(id int) (models.Competition, bool) {
	for _, c := range s.Competitions {
		if c.ID == id {
			return c, true
		}
	}
	return models.Competition{}, false
}

// IsSelected reports whether the competition with id is the current selection
func (s State) IsSelected(id int) bool {
	return s.Selected != nil && s.Selected.ID == id
}

// Clone returns a deep copy safe to hand to other goroutines
func (s State) Clone() State {
	out := s
	out.Competitions = append([]models.Competition{}, s.Competitions...)
	out.Participants = append([]models.Participant{}, s.Participants...)
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// The functions below are the pure transitions applied by Store.

// WithUser records a successful login. The password is not kept.
func WithUser(s State, user models.User) State {
	user.Password = ""
	s.User = &user
	return s
}

// WithFilters replaces the filters without touching the lists
func WithFilters(s State, f models.Filters) State {
	s.Filters = f
	return s
}

// CompetitionsLoaded replaces the competition list and always clears the
// selection and the participant list. A nil list is stored as empty.
func CompetitionsLoaded(s State, competitions []models.Competition) State {
	if competitions == nil {
		competitions = []models.Competition{}
	}
	s.Competitions = competitions
	s.Selected = nil
	s.Participants = []models.Participant{}
	return s
}

// WithSelection sets or clears the selection. Participants are left as they are.
func WithSelection(s State, c *models.Competition) State {
	if c == nil {
		s.Selected = nil
		return s
	}
	sel := *c
	s.Selected = &sel
	return s
}

// ParticipantsLoaded replaces the participant list. A nil list is stored as empty.
func ParticipantsLoaded(s State, participants []models.Participant) State {
	if participants == nil {
		participants = []models.Participant{}
	}
	s.Participants = participants
	return s
}
