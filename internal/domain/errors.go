package domain

import "errors"

var (
	ErrNotManaged          = errors.New("not in a managed room")
	ErrNotOwner            = errors.New("not the owner")
	ErrOwnerPresent        = errors.New("owner still present")
	ErrAlreadyOwner        = errors.New("already owner")
	ErrValidation          = errors.New("validation error")
	ErrPlatformUnavailable = errors.New("platform unavailable")
	ErrFeatureDisabled     = errors.New("feature disabled")
	ErrNotAvailable        = errors.New("not yet available")
	ErrTargetAbsent        = errors.New("target not in room")
	ErrRateLimited         = errors.New("rate limited")
)

// UserMessage turns err into a short reason fit for the acting user.
// Platform failures never expose their underlying detail.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPlatformUnavailable):
		return "Something went wrong talking to the server, try again later."
	case errors.Is(err, ErrNotManaged):
		return "You must be in your own temporary voice room to use this."
	case errors.Is(err, ErrNotOwner):
		return "Only the room owner can do this."
	case errors.Is(err, ErrOwnerPresent):
		return "The owner is still in the room."
	case errors.Is(err, ErrAlreadyOwner):
		return "You already own this room."
	case errors.Is(err, ErrTargetAbsent):
		return "That user is no longer in the room."
	case errors.Is(err, ErrNotAvailable):
		return "This feature is not available yet."
	case errors.Is(err, ErrFeatureDisabled):
		return "Temporary voice rooms are currently disabled."
	case errors.Is(err, ErrRateLimited):
		return "Slow down a little."
	case errors.Is(err, ErrValidation):
		return err.Error()
	default:
		return "Something went wrong."
	}
}
