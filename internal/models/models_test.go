package models

import (
	"encoding/json"
	"testing"
)

func TestCompetition_JSONFieldNames(t *testing.T) {
	body := `{"competitionID":7,"type":"Poetry","ageCategory":"9-11 years old","nrOfParticipants":3}`

	var c Competition
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if c.ID != 7 || c.Type != TypePoetry || c.AgeCategory != Age9to11 || c.NrOfParticipants != 3 {
		t.Errorf("unexpected competition: %+v", c)
	}
}

func TestEnrollDTO_JSON(t *testing.T) {
	dto := EnrollDTO{
		Participant: Participant{ID: 4, Name: "Bob", Age: 9},
		CompTypes:   []CompetitionType{TypeDrawing, TypePoetry},
	}
	data, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"participant":{"participantID":4,"name":"Bob","age":9},"compTypes":["Drawing","Poetry"]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestAgeCategory_Contains(t *testing.T) {
	tests := []struct {
		cat  AgeCategory
		age  int
		want bool
	}{
		{Age6to8, 5, false},
		{Age6to8, 6, true},
		{Age6to8, 8, true},
		{Age9to11, 9, true},
		{Age9to11, 12, false},
		{Age12to15, 15, true},
		{Age12to15, 16, false},
		{AgeAll, 10, false},
	}
	for _, tt := range tests {
		if got := tt.cat.Contains(tt.age); got != tt.want {
			t.Errorf("%q.Contains(%d) = %v, want %v", tt.cat, tt.age, got, tt.want)
		}
	}
}

func TestAgeCategoryFor(t *testing.T) {
	if cat, ok := AgeCategoryFor(10); !ok || cat != Age9to11 {
		t.Errorf("AgeCategoryFor(10) = %q, %v", cat, ok)
	}
	if _, ok := AgeCategoryFor(3); ok {
		t.Error("expected no band for age 3")
	}
}

func TestParseCompetitionType(t *testing.T) {
	for _, typ := range CompetitionTypes() {
		if got, ok := ParseCompetitionType(string(typ)); !ok || got != typ {
			t.Errorf("ParseCompetitionType(%q) = %q, %v", typ, got, ok)
		}
	}
	if _, ok := ParseCompetitionType("ALL"); ok {
		t.Error("ALL is not a concrete competition type")
	}
	if _, ok := ParseCompetitionType("Chess"); ok {
		t.Error("Chess should not parse")
	}
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		age     string
		want    Filters
		wantErr bool
	}{
		{"empty means all", "", "", DefaultFilters(), false},
		{"explicit all", "ALL", "ALL", DefaultFilters(), false},
		{"type only", "Drawing", "ALL", Filters{Type: TypeDrawing, Age: AgeAll}, false},
		{"both", "Treasure Hunt", "12-15 years old", Filters{Type: TypeTreasureHunt, Age: Age12to15}, false},
		{"bad type", "Chess", "ALL", DefaultFilters(), true},
		{"bad age", "ALL", "99 years old", DefaultFilters(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilters(tt.typ, tt.age)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilters_Constrained(t *testing.T) {
	f := Filters{Type: TypePoetry, Age: AgeAll}
	if !f.TypeConstrained() || f.AgeConstrained() {
		t.Errorf("unexpected constraint flags for %+v", f)
	}
}

func TestFilters_Validate(t *testing.T) {
	tests := []struct {
		name    string
		f       Filters
		wantErr string
	}{
		{"default", DefaultFilters(), ""},
		{"both constrained", Filters{Type: TypePoetry, Age: Age9to11}, ""},
		{"unknown type", Filters{Type: "Chess", Age: AgeAll}, "type: unknown competition type."},
		{"unknown age", Filters{Type: TypeAll, Age: "99 years old"}, "age: unknown age category."},
		{"zero value", Filters{}, "age: cannot be blank; type: cannot be blank."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.f.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("got %v, want %q", err, tt.wantErr)
			}
		})
	}
}
