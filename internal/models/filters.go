package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// Filters narrows the competition list on two independent axes.
// TypeAll / AgeAll mean no constraint on that axis.
type Filters struct {
	Type CompetitionType `json:"type"`
	Age  AgeCategory     `json:"age"`
}

// DefaultFilters is the unconstrained filter
func DefaultFilters() Filters {
	return Filters{Type: TypeAll, Age: AgeAll}
}

// TypeConstrained reports whether the type axis narrows the list
func (f Filters) TypeConstrained() bool {
	return f.Type != TypeAll
}

// AgeConstrained reports whether the age axis narrows the list
func (f Filters) AgeConstrained() bool {
	return f.Age != AgeAll
}

// Validate checks both axes hold an enumerated value
func (f Filters) Validate() error {
	types := []interface{}{TypeAll}
	for _, t := range CompetitionTypes() {
		types = append(types, t)
	}
	ages := []interface{}{AgeAll}
	for _, a := range AgeCategories() {
		ages = append(ages, a)
	}

	return validation.ValidateStruct(
		&f,
		validation.Field(&f.Type, validation.Required, validation.In(types...).Error("unknown competition type")),
		validation.Field(&f.Age, validation.Required, validation.In(ages...).Error("unknown age category")),
	)
}

// ParseFilters builds Filters from raw form values. Empty values mean ALL.
func ParseFilters(typ, age string) (Filters, error) {
	f := DefaultFilters()
	if typ != "" {
		f.Type = CompetitionType(typ)
	}
	if age != "" {
		f.Age = AgeCategory(age)
	}
	if err := f.Validate(); err != nil {
		return DefaultFilters(), err
	}
	return f, nil
}
