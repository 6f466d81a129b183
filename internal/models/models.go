package models

// Competition is a contest instance identified by a type and an age category
type Competition struct {
	ID               int             `json:"competitionID"`
	Type             CompetitionType `json:"type"`
	AgeCategory      AgeCategory     `json:"ageCategory"`
	NrOfParticipants int             `json:"nrOfParticipants"` // display only, not authoritative
}

// Participant is a person who may be enrolled in competitions
type Participant struct {
	ID   int    `json:"participantID"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// User is the record returned by the API after a successful login.
// Password is opaque to this client.
type User struct {
	ID       int    `json:"userID"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// CompetitionDTO is the payload for creating or updating a competition
type CompetitionDTO struct {
	Type             CompetitionType `json:"type"`
	AgeCategory      AgeCategory     `json:"ageCategory"`
	NrOfParticipants int             `json:"nrOfParticipants"`
}

// CreateParticipantDTO is the payload for creating a participant
type CreateParticipantDTO struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// UpdateParticipantDTO carries the fields to change on a participant
type UpdateParticipantDTO struct {
	Name *string `json:"name,omitempty"`
	Age  *int    `json:"age,omitempty"`
}

// EnrollDTO enrolls one participant into the competitions matching each type
type EnrollDTO struct {
	Participant Participant       `json:"participant"`
	CompTypes   []CompetitionType `json:"compTypes"`
}

// CreateUserDTO is the payload for creating a user
type CreateUserDTO struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// LoginRequest is the payload for the login call
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
