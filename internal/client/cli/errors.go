package cli

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/services"
)

// describeError turns a service error into one line for the user.
func describeError(err error) string {
	var ve *client.ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "Please fix: " + strings.TrimPrefix(ve.Error(), client.ErrValidation.Error()+": ")
	case errors.Is(err, services.ErrOperationInFlight):
		return "That is already in progress."
	case errors.Is(err, services.ErrIndexOutOfRange):
		return "No image with that number."
	case errors.Is(err, client.ErrAuthFailure):
		return "Wrong email or password."
	case errors.Is(err, client.ErrDuplicateAccount):
		return "An account with this email already exists."
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Registration rejected: check the email and use a password of at least 8 characters."
	case errors.Is(err, client.ErrNotAuthenticated):
		return "You are not logged in. Use 'login' first."
	case errors.Is(err, client.ErrNotFound):
		return "Entry not found."
	case errors.Is(err, client.ErrConflict):
		return "The entry changed elsewhere. Run 'refresh' and try again."
	case errors.Is(err, client.ErrNetwork):
		return "Cannot reach the server. Try again later."
	case errors.Is(err, client.ErrValidation):
		return "Invalid input: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
