// Package contestapi provides a client for the Contest Tracker HTTP API.
package contestapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
)

// Operation names, used for logging and metrics labels
const (
	OpListCompetitions             = "competitions.list"
	OpGetCompetition               = "competitions.get"
	OpListCompetitionsByType       = "competitions.by_type"
	OpListCompetitionsByAge        = "competitions.by_age"
	OpListCompetitionsByTypeAndAge = "competitions.by_type_age"
	OpCreateCompetition            = "competitions.create"
	OpUpdateCompetition            = "competitions.update"
	OpDeleteCompetition            = "competitions.delete"
	OpEnroll                       = "competitions.enroll"
	OpListParticipants             = "participants.list"
	OpGetParticipant               = "participants.get"
	OpCreateParticipant            = "participants.create"
	OpUpdateParticipant            = "participants.update"
	OpDeleteParticipant            = "participants.delete"
	OpListParticipantsForComp      = "participants.for_competition"
	OpListUsers                    = "users.list"
	OpGetUser                      = "users.get"
	OpCreateUser                   = "users.create"
	OpLogin                        = "users.login"
)

const (
	competitionsPath = "/api/competitions"
	participantsPath = "/api/participants"
	usersPath        = "/api/users"
)

// Client defines the interface for Contest Tracker API operations.
// Every method performs exactly one round trip; there are no retries and no caching.
type Client interface {
	// ListCompetitions retrieves all competitions
	ListCompetitions(ctx context.Context) ([]models.Competition, error)
	// GetCompetition retrieves one competition by id
	GetCompetition(ctx context.Context, id int) (*models.Competition, error)
	// ListCompetitionsByType retrieves competitions of one type
	ListCompetitionsByType(ctx context.Context, typ models.CompetitionType) ([]models.Competition, error)
	// ListCompetitionsByAge retrieves competitions of one age band
	ListCompetitionsByAge(ctx context.Context, age models.AgeCategory) ([]models.Competition, error)
	// ListCompetitionsByTypeAndAge retrieves competitions matching both axes
	ListCompetitionsByTypeAndAge(ctx context.Context, typ models.CompetitionType, age models.AgeCategory) ([]models.Competition, error)
	CreateCompetition(ctx context.Context, dto models.CompetitionDTO) (*models.Competition, error)
	UpdateCompetition(ctx context.Context, id int, dto models.CompetitionDTO) (*models.Competition, error)
	DeleteCompetition(ctx context.Context, id int) error
	// EnrollParticipant enrolls an existing participant into the competitions of the given types
	EnrollParticipant(ctx context.Context, participant models.Participant, types []models.CompetitionType) error

	ListParticipants(ctx context.Context) ([]models.Participant, error)
	GetParticipant(ctx context.Context, id int) (*models.Participant, error)
	CreateParticipant(ctx context.Context, dto models.CreateParticipantDTO) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, id int, dto models.UpdateParticipantDTO) (*models.Participant, error)
	DeleteParticipant(ctx context.Context, id int) error
	// ListParticipantsForCompetition retrieves the participants enrolled in one competition
	ListParticipantsForCompetition(ctx context.Context, competitionID int) ([]models.Participant, error)

	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	CreateUser(ctx context.Context, dto models.CreateUserDTO) (*models.User, error)
	// Login returns the user record for valid credentials
	Login(ctx context.Context, userName, password string) (*models.User, error)

	// BaseURL returns the configured API base URL
	BaseURL() string
	// SetBaseURL updates the API base URL
	SetBaseURL(url string)
}

// Observer is notified after every round trip. status is 0 when no response was received.
type Observer func(operation string, status int, duration time.Duration, err error)

// HTTPClient is a real HTTP client for the Contest Tracker API
type HTTPClient struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
	observer   Observer
}

// NewHTTPClient creates a new API client. No timeout is applied; cancel through ctx.
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, &http.Client{}, log)
}

// NewHTTPClientWithHTTPClient creates a new API client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// SetObserver installs a hook called after every request
func (c *HTTPClient) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// BaseURL returns the configured API base URL
func (c *HTTPClient) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL updates the API base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.mu.Lock()
	c.baseURL = strings.TrimRight(url, "/")
	c.mu.Unlock()
}

// request describes a single API call
type request struct {
	op      string
	method  string
	path    string
	body    interface{}
	failMsg string
}

// do executes one request, checks the status and decodes the JSON body into out.
// A 2xx response with an empty body leaves out untouched.
func (c *HTTPClient) do(ctx context.Context, r request, out interface{}) (err error) {
	c.mu.RLock()
	apiURL := c.baseURL + r.path
	observer := c.observer
	c.mu.RUnlock()

	start := time.Now()
	status := 0
	defer func() {
		if observer != nil {
			observer(r.op, status, time.Since(start), err)
		}
	}()

	var reqBody io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", r.op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	c.log.Debug("API request", "method", r.method, "url", apiURL, "operation", r.op)

	req, err := http.NewRequestWithContext(ctx, r.method, apiURL, reqBody)
	if err != nil {
		return &RequestFailed{Operation: r.op, Message: r.failMsg, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RequestFailed{Operation: r.op, Message: r.failMsg, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestFailed{Operation: r.op, Message: r.failMsg, StatusCode: status, Err: err}
	}

	c.log.Debug("API response", "operation", r.op, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestFailed{Operation: r.op, Message: r.failMsg, StatusCode: resp.StatusCode}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeFailed{Operation: r.op, Err: err}
	}
	return nil
}

// listCompetitions runs a list call and never returns a nil slice on success
func (c *HTTPClient) listCompetitions(ctx context.Context, r request) ([]models.Competition, error) {
	var out []models.Competition
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Competition{}
	}
	return out, nil
}

func (c *HTTPClient) listParticipants(ctx context.Context, r request) ([]models.Participant, error) {
	var out []models.Participant
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Participant{}
	}
	return out, nil
}

// ListCompetitions retrieves all competitions
func (c *HTTPClient) ListCompetitions(ctx context.Context) ([]models.Competition, error) {
	return c.listCompetitions(ctx, request{
		op:      OpListCompetitions,
		method:  http.MethodGet,
		path:    competitionsPath,
		failMsg: "Failed to fetch all competitions",
	})
}

// GetCompetition retrieves one competition by id
func (c *HTTPClient) GetCompetition(ctx context.Context, id int) (*models.Competition, error) {
	var out models.Competition
	err := c.do(ctx, request{
		op:      OpGetCompetition,
		method:  http.MethodGet,
		path:    fmt.Sprintf("%s/%d", competitionsPath, id),
		failMsg: fmt.Sprintf("Failed to fetch competition with id=%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCompetitionsByType retrieves competitions of one type
func (c *HTTPClient) ListCompetitionsByType(ctx context.Context, typ models.CompetitionType) ([]models.Competition, error) {
	return c.listCompetitions(ctx, request{
		op:      OpListCompetitionsByType,
		method:  http.MethodGet,
		path:    competitionsPath + "/type/" + url.PathEscape(string(typ)),
		failMsg: fmt.Sprintf("Failed to fetch competitions with type=%s", typ),
	})
}

// ListCompetitionsByAge retrieves competitions of one age band
func (c *HTTPClient) ListCompetitionsByAge(ctx context.Context, age models.AgeCategory) ([]models.Competition, error) {
	return c.listCompetitions(ctx, request{
		op:      OpListCompetitionsByAge,
		method:  http.MethodGet,
		path:    competitionsPath + "/age/" + url.PathEscape(string(age)),
		failMsg: fmt.Sprintf("Failed to fetch competitions with age=%s", age),
	})
}

// ListCompetitionsByTypeAndAge retrieves competitions matching both axes
func (c *HTTPClient) ListCompetitionsByTypeAndAge(ctx context.Context, typ models.CompetitionType, age models.AgeCategory) ([]models.Competition, error) {
	return c.listCompetitions(ctx, request{
		op:      OpListCompetitionsByTypeAndAge,
		method:  http.MethodGet,
		path:    competitionsPath + "/type/" + url.PathEscape(string(typ)) + "/age/" + url.PathEscape(string(age)),
		failMsg: fmt.Sprintf("Failed to fetch competitions with type=%s and age=%s", typ, age),
	})
}

// CreateCompetition creates a competition and returns the stored record
func (c *HTTPClient) CreateCompetition(ctx context.Context, dto models.CompetitionDTO) (*models.Competition, error) {
	var out models.Competition
	err := c.do(ctx, request{
		op:      OpCreateCompetition,
		method:  http.MethodPost,
		path:    competitionsPath,
		body:    dto,
		failMsg: "Failed to create competition",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCompetition replaces a competition's fields
func (c *HTTPClient) UpdateCompetition(ctx context.Context, id int, dto models.CompetitionDTO) (*models.Competition, error) {
	var out models.Competition
	err := c.do(ctx, request{
		op:      OpUpdateCompetition,
		method:  http.MethodPut,
		path:    fmt.Sprintf("%s/%d", competitionsPath, id),
		body:    dto,
		failMsg: fmt.Sprintf("Failed to update competition with id=%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCompetition removes a competition
func (c *HTTPClient) DeleteCompetition(ctx context.Context, id int) error {
	return c.do(ctx, request{
		op:      OpDeleteCompetition,
		method:  http.MethodDelete,
		path:    fmt.Sprintf("%s/%d", competitionsPath, id),
		failMsg: fmt.Sprintf("Failed to delete competition with id=%d", id),
	}, nil)
}

// EnrollParticipant enrolls an existing participant into the competitions of the given types
func (c *HTTPClient) EnrollParticipant(ctx context.Context, participant models.Participant, types []models.CompetitionType) error {
	return c.do(ctx, request{
		op:      OpEnroll,
		method:  http.MethodPost,
		path:    competitionsPath + "/enroll",
		body:    models.EnrollDTO{Participant: participant, CompTypes: types},
		failMsg: fmt.Sprintf("Failed to enroll participant %d", participant.ID),
	}, nil)
}

// ListParticipants retrieves all participants
func (c *HTTPClient) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	return c.listParticipants(ctx, request{
		op:      OpListParticipants,
		method:  http.MethodGet,
		path:    participantsPath,
		failMsg: "Failed to fetch all participants",
	})
}

// GetParticipant retrieves one participant by id
func (c *HTTPClient) GetParticipant(ctx context.Context, id int) (*models.Participant, error) {
	var out models.Participant
	err := c.do(ctx, request{
		op:      OpGetParticipant,
		method:  http.MethodGet,
		path:    fmt.Sprintf("%s/%d", participantsPath, id),
		failMsg: fmt.Sprintf("Failed to fetch participant with id=%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateParticipant creates a participant and returns the stored record
func (c *HTTPClient) CreateParticipant(ctx context.Context, dto models.CreateParticipantDTO) (*models.Participant, error) {
	var out models.Participant
	err := c.do(ctx, request{
		op:      OpCreateParticipant,
		method:  http.MethodPost,
		path:    participantsPath,
		body:    dto,
		failMsg: "Failed to create participant",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateParticipant changes the provided fields of a participant
func (c *HTTPClient) UpdateParticipant(ctx context.Context, id int, dto models.UpdateParticipantDTO) (*models.Participant, error) {
	var out models.Participant
	err := c.do(ctx, request{
		op:      OpUpdateParticipant,
		method:  http.MethodPut,
		path:    fmt.Sprintf("%s/%d", participantsPath, id),
		body:    dto,
		failMsg: fmt.Sprintf("Failed to update participant with id=%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteParticipant removes a participant
func (c *HTTPClient) DeleteParticipant(ctx context.Context, id int) error {
	return c.do(ctx, request{
		op:      OpDeleteParticipant,
		method:  http.MethodDelete,
		path:    fmt.Sprintf("%s/%d", participantsPath, id),
		failMsg: fmt.Sprintf("Failed to delete participant with id=%d", id),
	}, nil)
}

// ListParticipantsForCompetition retrieves the participants enrolled in one competition
func (c *HTTPClient) ListParticipantsForCompetition(ctx context.Context, competitionID int) ([]models.Participant, error) {
	return c.listParticipants(ctx, request{
		op:      OpListParticipantsForComp,
		method:  http.MethodGet,
		path:    fmt.Sprintf("%s/comp/%d", participantsPath, competitionID),
		failMsg: fmt.Sprintf("Failed to fetch participants for competitionId=%d", competitionID),
	})
}

// ListUsers retrieves all users
func (c *HTTPClient) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, request{
		op:      OpListUsers,
		method:  http.MethodGet,
		path:    usersPath,
		failMsg: "Failed to fetch users",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.User{}
	}
	return out, nil
}

// GetUser retrieves one user by id
func (c *HTTPClient) GetUser(ctx context.Context, id int) (*models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		op:      OpGetUser,
		method:  http.MethodGet,
		path:    fmt.Sprintf("%s/%d", usersPath, id),
		failMsg: fmt.Sprintf("Failed to fetch user with id=%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser creates a user
func (c *HTTPClient) CreateUser(ctx context.Context, dto models.CreateUserDTO) (*models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		op:      OpCreateUser,
		method:  http.MethodPost,
		path:    usersPath,
		body:    dto,
		failMsg: "Failed to create user",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login returns the user record for valid credentials
func (c *HTTPClient) Login(ctx context.Context, userName, password string) (*models.User, error) {
	var out models.User
	err := c.do(ctx, request{
		op:      OpLogin,
		method:  http.MethodPost,
		path:    usersPath + "/login",
		body:    models.LoginRequest{UserName: userName, Password: password},
		failMsg: "Invalid username or password",
	}, &out)
	if err != nil {
		return nil, err
	}

	c.log.Info("API login successful", "user", userName)
	return &out, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
