package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxRoomNameLen = 30
	MaxUserLimit   = 99
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RenameInput is the payload of a rename command.
type RenameInput struct {
	Name string `validate:"min=1,max=30"`
}

// LimitInput is the payload of a set-limit command; 0 means unlimited.
type LimitInput struct {
	Limit int `validate:"min=0,max=99"`
}

func (in RenameInput) Validate() error {
	return check(in, fmt.Sprintf("name must be 1-%d characters", MaxRoomNameLen))
}

func (in LimitInput) Validate() error {
	return check(in, fmt.Sprintf("limit must be a number between 0 and %d", MaxUserLimit))
}

func check(in any, reason string) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrValidation, reason)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// ParseName trims surrounding whitespace from a requested room name and
// validates what is left.
func ParseName(raw string) (RenameInput, error) {
	in := RenameInput{Name: strings.TrimSpace(raw)}
	return in, in.Validate()
}

// ParseLimit reads a user limit typed as text.
func ParseLimit(raw string) (LimitInput, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return LimitInput{}, fmt.Errorf("%w: limit must be a number between 0 and %d", ErrValidation, MaxUserLimit)
	}
	in := LimitInput{Limit: n}
	return in, in.Validate()
}
