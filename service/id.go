package service

import "github.com/google/uuid"

const (
	questionIDPrefix = "q_"
	userIDPrefix     = "u_"
)

// NewQuestionID allocates an id short enough to embed in component custom ids
func NewQuestionID() string {
	return questionIDPrefix + uuid.NewString()
}

// NewUserID allocates an internal user id
func NewUserID() string {
	return userIDPrefix + uuid.NewString()
}
