package services

import (
	"context"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	apperrors "github.com/contesttracker/tracker/internal/errors"
	"github.com/contesttracker/tracker/internal/logger"
	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

// ParticipantService creates participants and enrolls them into competitions
type ParticipantService struct {
	log logger.Logger
	api contestapi.Client
}

// NewParticipantService creates a new ParticipantService
func NewParticipantService(log logger.Logger, api contestapi.Client) *ParticipantService {
	return &ParticipantService{
		log: log,
		api: api,
	}
}

// ParticipantForm holds the raw values of the add-participant form.
// Comp1 and Comp2 are competition types; empty means no choice.
type ParticipantForm struct {
	Name  string
	Age   string
	Comp1 string
	Comp2 string
}

type participantInput struct {
	Name  string `json:"name"`
	Age   *int   `json:"age"`
	Comp1 string `json:"comp1"`
	Comp2 string `json:"comp2"`
}

func (in *participantInput) Validate() error {
	known := make([]interface{}, 0, 3)
	for _, t := range models.CompetitionTypes() {
		known = append(known, string(t))
	}
	return validation.ValidateStruct(
		in,
		validation.Field(&in.Name, validation.Required.Error(MsgNameRequired)),
		validation.Field(&in.Age, validation.NotNil.Error(MsgAgeRequired), validation.Min(0).Error(MsgAgeRequired)),
		validation.Field(&in.Comp1, validation.In(known...).Error(MsgUnknownCompetition)),
		validation.Field(&in.Comp2, validation.In(known...).Error(MsgUnknownCompetition)),
	)
}

// firstError reports one field error in form order
func firstError(err error, order ...string) error {
	errs, ok := err.(validation.Errors)
	if !ok {
		return apperrors.Validation(err.Error())
	}
	for _, field := range order {
		if fieldErr := errs[field]; fieldErr != nil {
			return apperrors.Validation(fieldErr.Error())
		}
	}
	return apperrors.Validation(errs.Error())
}

// CompetitionTypeSet returns the distinct competition types chosen in the form.
// A second choice equal to the first is dropped.
func CompetitionTypeSet(comp1, comp2 string) []models.CompetitionType {
	types := []models.CompetitionType{}
	if comp1 != "" {
		types = append(types, models.CompetitionType(comp1))
	}
	if comp2 != "" && comp2 != comp1 {
		types = append(types, models.CompetitionType(comp2))
	}
	return types
}

// parseForm validates the form without touching the network
func parseForm(form ParticipantForm) (models.CreateParticipantDTO, []models.CompetitionType, error) {
	in := participantInput{
		Name:  strings.TrimSpace(form.Name),
		Comp1: strings.TrimSpace(form.Comp1),
		Comp2: strings.TrimSpace(form.Comp2),
	}
	if raw := strings.TrimSpace(form.Age); raw != "" {
		if age, err := strconv.Atoi(raw); err == nil {
			in.Age = &age
		} else {
			// present but not a number is reported like a missing age
			return models.CreateParticipantDTO{}, nil, apperrors.Validation(MsgAgeRequired)
		}
	}

	if err := in.Validate(); err != nil {
		return models.CreateParticipantDTO{}, nil, firstError(err, "name", "age", "comp1", "comp2")
	}

	return models.CreateParticipantDTO{Name: in.Name, Age: *in.Age}, CompetitionTypeSet(in.Comp1, in.Comp2), nil
}

// AddParticipant validates the form, creates the participant and, when at
// least one competition type was chosen, enrolls it. Enrollment is only tried
// after creation succeeds. Any remote failure is reported with one generic
// message; on success the view is refreshed.
func (s *ParticipantService) AddParticipant(ctx context.Context, view ViewState, form ParticipantForm) (*models.Participant, error) {
	dto, types, err := parseForm(form)
	if err != nil {
		return nil, err
	}

	created, err := s.api.CreateParticipant(ctx, dto)
	if err != nil {
		s.log.Error("Error creating participant", "name", dto.Name, "age", dto.Age, "error", err)
		return nil, apperrors.Wrap(err, apperrors.KindOf(err), MsgAddParticipantFailed)
	}
	if created == nil {
		// a 2xx with no body leaves nothing to enroll
		created = &models.Participant{Name: dto.Name, Age: dto.Age}
	}

	if len(types) > 0 {
		if err := s.api.EnrollParticipant(ctx, *created, types); err != nil {
			s.log.Error("Error enrolling participant",
				"participant_id", created.ID,
				"types", types,
				"error", err,
			)
			return nil, apperrors.Wrap(err, apperrors.KindOf(err), MsgAddParticipantFailed)
		}
	}

	s.log.Info("Participant added", "participant_id", created.ID, "name", created.Name, "types", len(types))
	view.ParticipantAdded(ctx)
	return created, nil
}
