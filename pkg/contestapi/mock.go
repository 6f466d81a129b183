package contestapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/contesttracker/tracker/internal/models"
)

// Call records one operation made against the MockClient
type Call struct {
	Operation string
	Args      []interface{}
}

// MockClient is an in-memory Contest Tracker client for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu           sync.Mutex
	baseURL      string
	competitions []models.Competition
	participants map[int][]models.Participant // competition id -> participants
	people       []models.Participant
	users        []models.User
	errs         map[string]error
	calls        []Call
	enrollments  []models.EnrollDTO
	nextID       int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithCompetitions sets the competitions to return
func WithCompetitions(competitions []models.Competition) MockOption {
	return func(m *MockClient) {
		m.competitions = competitions
	}
}

// WithParticipantsFor sets the participants enrolled in one competition
func WithParticipantsFor(competitionID int, participants []models.Participant) MockOption {
	return func(m *MockClient) {
		m.participants[competitionID] = participants
		m.people = append(m.people, participants...)
	}
}

// WithUsers sets the users that can log in
func WithUsers(users []models.User) MockOption {
	return func(m *MockClient) {
		m.users = users
	}
}

// WithError makes the named operation fail with err
func WithError(operation string, err error) MockOption {
	return func(m *MockClient) {
		m.errs[operation] = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock client seeded with the default data set
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:      "http://mock-contest-api.local",
		competitions: DefaultMockCompetitions(),
		participants: make(map[int][]models.Participant),
		users:        DefaultMockUsers(),
		errs:         make(map[string]error),
		nextID:       100,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetError changes the failure of an operation after construction; nil clears it
func (m *MockClient) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errs, operation)
		return
	}
	m.errs[operation] = err
}

// record notes the call and returns the configured error for it
func (m *MockClient) record(op string, args ...interface{}) error {
	m.calls = append(m.calls, Call{Operation: op, Args: args})
	return m.errs[op]
}

// Calls returns a copy of every call made so far
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsTo returns the calls made to one operation
func (m *MockClient) CallsTo(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if c.Operation == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log
func (m *MockClient) ResetCalls() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// Enrollments returns the enrollment payloads received (for testing)
func (m *MockClient) Enrollments() []models.EnrollDTO {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.EnrollDTO, len(m.enrollments))
	copy(out, m.enrollments)
	return out
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	m.baseURL = url
	m.mu.Unlock()
}

func (m *MockClient) filterCompetitions(keep func(models.Competition) bool) []models.Competition {
	out := []models.Competition{}
	for _, c := range m.competitions {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// ListCompetitions returns every configured competition
func (m *MockClient) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListCompetitions); err != nil {
		return nil, err
	}
	return m.filterCompetitions(func(models.Competition) bool { return true }), nil
}

// GetCompetition returns the competition with id or a 404 RequestFailed
func (m *MockClient) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetCompetition, id); err != nil {
		return nil, err
	}
	for _, c := range m.competitions {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, notFound(OpGetCompetition, fmt.Sprintf("Failed to fetch competition with id=%d", id))
}

// ListCompetitionsByType returns competitions of one type
func (m *MockClient) ListCompetitionsByType(ctx context.Context, typ models.CompetitionType) ([]models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListCompetitionsByType, typ); err != nil {
		return nil, err
	}
	return m.filterCompetitions(func(c models.Competition) bool { return c.Type == typ }), nil
}

// ListCompetitionsByAge returns competitions of one age band
func (m *MockClient) ListCompetitionsByAge(ctx context.Context, age models.AgeCategory) ([]models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListCompetitionsByAge, age); err != nil {
		return nil, err
	}
	return m.filterCompetitions(func(c models.Competition) bool { return c.AgeCategory == age }), nil
}

// ListCompetitionsByTypeAndAge returns competitions matching both axes
func (m *MockClient) ListCompetitionsByTypeAndAge(ctx context.Context, typ models.CompetitionType, age models.AgeCategory) ([]models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListCompetitionsByTypeAndAge, typ, age); err != nil {
		return nil, err
	}
	return m.filterCompetitions(func(c models.Competition) bool { return c.Type == typ && c.AgeCategory == age }), nil
}

// CreateCompetition appends a competition with a fresh id
func (m *MockClient) CreateCompetition(ctx context.Context, dto models.CompetitionDTO) (*models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateCompetition, dto); err != nil {
		return nil, err
	}
	m.nextID++
	c := models.Competition{ID: m.nextID, Type: dto.Type, AgeCategory: dto.AgeCategory, NrOfParticipants: dto.NrOfParticipants}
	m.competitions = append(m.competitions, c)
	return &c, nil
}

// UpdateCompetition replaces the fields of an existing competition
func (m *MockClient) UpdateCompetition(ctx context.Context, id int, dto models.CompetitionDTO) (*models.Competition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpUpdateCompetition, id, dto); err != nil {
		return nil, err
	}
	for i := range m.competitions {
		if m.competitions[i].ID == id {
			m.competitions[i].Type = dto.Type
			m.competitions[i].AgeCategory = dto.AgeCategory
			m.competitions[i].NrOfParticipants = dto.NrOfParticipants
			updated := m.competitions[i]
			return &updated, nil
		}
	}
	return nil, notFound(OpUpdateCompetition, fmt.Sprintf("Failed to update competition with id=%d", id))
}

// DeleteCompetition removes a competition; unknown ids are ignored
func (m *MockClient) DeleteCompetition(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDeleteCompetition, id); err != nil {
		return err
	}
	m.competitions = m.filterCompetitions(func(c models.Competition) bool { return c.ID != id })
	delete(m.participants, id)
	return nil
}

// EnrollParticipant records the payload and enrolls the participant into the
// competition of each type whose age band contains the participant's age
func (m *MockClient) EnrollParticipant(ctx context.Context, participant models.Participant, types []models.CompetitionType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpEnroll, participant, types); err != nil {
		return err
	}
	m.enrollments = append(m.enrollments, models.EnrollDTO{Participant: participant, CompTypes: append([]models.CompetitionType(nil), types...)})
	for _, typ := range types {
		for i := range m.competitions {
			c := &m.competitions[i]
			if c.Type == typ && c.AgeCategory.Contains(participant.Age) {
				m.participants[c.ID] = append(m.participants[c.ID], participant)
				c.NrOfParticipants++
				break
			}
		}
	}
	return nil
}

// ListParticipants returns every participant known to the mock
func (m *MockClient) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListParticipants); err != nil {
		return nil, err
	}
	return append([]models.Participant{}, m.people...), nil
}

// GetParticipant returns one participant by id
func (m *MockClient) GetParticipant(ctx context.Context, id int) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetParticipant, id); err != nil {
		return nil, err
	}
	for _, p := range m.people {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, notFound(OpGetParticipant, fmt.Sprintf("Failed to fetch participant with id=%d", id))
}

// CreateParticipant stores a participant with a fresh id
func (m *MockClient) CreateParticipant(ctx context.Context, dto models.CreateParticipantDTO) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateParticipant, dto); err != nil {
		return nil, err
	}
	m.nextID++
	p := models.Participant{ID: m.nextID, Name: dto.Name, Age: dto.Age}
	m.people = append(m.people, p)
	return &p, nil
}

// UpdateParticipant changes the provided fields of a participant
func (m *MockClient) UpdateParticipant(ctx context.Context, id int, dto models.UpdateParticipantDTO) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpUpdateParticipant, id, dto); err != nil {
		return nil, err
	}
	for i := range m.people {
		if m.people[i].ID == id {
			if dto.Name != nil {
				m.people[i].Name = *dto.Name
			}
			if dto.Age != nil {
				m.people[i].Age = *dto.Age
			}
			updated := m.people[i]
			return &updated, nil
		}
	}
	return nil, notFound(OpUpdateParticipant, fmt.Sprintf("Failed to update participant with id=%d", id))
}

// DeleteParticipant removes a participant from the mock
func (m *MockClient) DeleteParticipant(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpDeleteParticipant, id); err != nil {
		return err
	}
	kept := m.people[:0]
	for _, p := range m.people {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.people = kept
	return nil
}

// ListParticipantsForCompetition returns the participants enrolled in a competition
func (m *MockClient) ListParticipantsForCompetition(ctx context.Context, competitionID int) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListParticipantsForComp, competitionID); err != nil {
		return nil, err
	}
	return append([]models.Participant{}, m.participants[competitionID]...), nil
}

// ListUsers returns the configured users
func (m *MockClient) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpListUsers); err != nil {
		return nil, err
	}
	return append([]models.User{}, m.users...), nil
}

// GetUser returns one user by id
func (m *MockClient) GetUser(ctx context.Context, id int) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpGetUser, id); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, notFound(OpGetUser, fmt.Sprintf("Failed to fetch user with id=%d", id))
}

// CreateUser stores a user with a fresh id
func (m *MockClient) CreateUser(ctx context.Context, dto models.CreateUserDTO) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpCreateUser, dto); err != nil {
		return nil, err
	}
	m.nextID++
	u := models.User{ID: m.nextID, UserName: dto.UserName, Password: dto.Password}
	m.users = append(m.users, u)
	return &u, nil
}

// Login succeeds when a configured user matches both fields
func (m *MockClient) Login(ctx context.Context, userName, password string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record(OpLogin, userName); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.UserName == userName && u.Password == password {
			found := u
			return &found, nil
		}
	}
	return nil, &RequestFailed{Operation: OpLogin, Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
}

func notFound(op, msg string) *RequestFailed {
	return &RequestFailed{Operation: op, Message: msg, StatusCode: http.StatusNotFound}
}

// DefaultMockCompetitions returns one competition per type and age band, ids 1-9
func DefaultMockCompetitions() []models.Competition {
	var out []models.Competition
	id := 1
	for _, typ := range models.CompetitionTypes() {
		for _, age := range models.AgeCategories() {
			out = append(out, models.Competition{ID: id, Type: typ, AgeCategory: age})
			id++
		}
	}
	return out
}

// DefaultMockUsers returns the users accepted by Login
func DefaultMockUsers() []models.User {
	return []models.User{
		{ID: 1, UserName: "admin", Password: "admin"},
		{ID: 2, UserName: "teacher", Password: "contest"},
	}
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
