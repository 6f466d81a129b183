package viewstate

import (
	"context"
	"fmt"

	"github.com/contesttracker/tracker/internal/models"
	"github.com/contesttracker/tracker/pkg/contestapi"
)

// ListOperation identifies which competition list call serves a filter
type ListOperation int

const (
	ListAll ListOperation = iota
	ListByType
	ListByAge
	ListByTypeAndAge
)

func (o ListOperation) String() string {
	switch o {
	case ListAll:
		return "list_all"
	case ListByType:
		return "list_by_type"
	case ListByAge:
		return "list_by_age"
	case ListByTypeAndAge:
		return "list_by_type_and_age"
	default:
		return fmt.Sprintf("ListOperation(%d)", int(o))
	}
}

// ChooseListOperation picks the list call from which axes are constrained
func ChooseListOperation(f models.Filters) ListOperation {
	switch {
	case !f.TypeConstrained() && !f.AgeConstrained():
		return ListAll
	case f.TypeConstrained() && !f.AgeConstrained():
		return ListByType
	case !f.TypeConstrained() && f.AgeConstrained():
		return ListByAge
	default:
		return ListByTypeAndAge
	}
}

// fetchCompetitions runs the list call chosen for f
func fetchCompetitions(ctx context.Context, api contestapi.Client, f models.Filters) ([]models.Competition, error) {
	switch op := ChooseListOperation(f); op {
	case ListAll:
		return api.ListCompetitions(ctx)
	case ListByType:
		return api.ListCompetitionsByType(ctx, f.Type)
	case ListByAge:
		return api.ListCompetitionsByAge(ctx, f.Age)
	case ListByTypeAndAge:
		return api.ListCompetitionsByTypeAndAge(ctx, f.Type, f.Age)
	default:
		return nil, fmt.Errorf("unhandled list operation %v", op)
	}
}
