package services

// Messages shown to the user
const (
	MsgNameRequired         = "Name is required."
	MsgAgeRequired          = "Valid age is required."
	MsgUnknownCompetition   = "Unknown competition type."
	MsgAddParticipantFailed = "Failed to add participant. Please try again."
	MsgInvalidCredentials   = "Invalid username or password."
)
