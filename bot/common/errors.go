package common

import (
	"errors"
	"fmt"
	"strings"

	"predictor/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (bad duration, wrong resolver, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: genericErrorMessage,
		LogMessage:  logMessage,
		Err:         err,
	}
}

const genericErrorMessage = "Something went wrong. Please try again later."

// UserMessageFor maps an error from the core to the text shown to the user
func UserMessageFor(err error) string {
	var botErr *BotError
	switch {
	case errors.As(err, &botErr):
		return botErr.UserMessage
	case errors.Is(err, service.ErrNotFound):
		return "This prediction no longer exists."
	case errors.Is(err, service.ErrUnauthorized):
		return "Only the creator of this prediction can resolve it."
	case errors.Is(err, service.ErrAlreadyResolved):
		return "This prediction has already been resolved."
	case errors.Is(err, service.ErrExpired):
		return "This prediction has expired and is no longer accepting votes."
	case errors.Is(err, service.ErrChannelUnavailable):
		return "Predictions channel not found. Please contact an administrator."
	case errors.Is(err, service.ErrValidation):
		return validationMessage(err)
	default:
		return genericErrorMessage
	}
}

// validationMessage strips the sentinel prefix so only the reason reaches the user
func validationMessage(err error) string {
	prefix := service.ErrValidation.Error() + ": "
	for e := err; e != nil; e = errors.Unwrap(e) {
		if msg := e.Error(); strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return err.Error()
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError logs err with the interaction context and replies with the mapped message
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	fields := log.Fields{
		"user_id": InteractionUserID(i),
		"error":   err.Error(),
	}
	if i.Type == discordgo.InteractionApplicationCommand {
		fields["command"] = i.ApplicationCommandData().Name
	} else if i.Type == discordgo.InteractionMessageComponent {
		fields["custom_id"] = i.MessageComponentData().CustomID
	}

	message := UserMessageFor(err)
	if message == genericErrorMessage {
		log.WithFields(fields).Error("Unexpected error handling interaction")
	} else {
		log.WithFields(fields).Debug("Interaction rejected")
	}

	if deferred {
		FollowUpWithError(s, i, message)
	} else {
		RespondWithError(s, i, message)
	}
}
