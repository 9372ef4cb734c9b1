package validators

import (
	"fmt"

	"pessoas-backend/domain/core/valueobjects"
	"pessoas-backend/pkg/errors"
)

// PersonValidator validates person-related domain rules. The HTTP layer
// rejects malformed payloads before they get here; this is the gate for
// anything constructing persons programmatically.
type PersonValidator struct {
	nicknameMinLength  int
	nicknameMaxLength  int
	nameMinLength      int
	nameMaxLength      int
	stackItemMaxLength int
}

// NewPersonValidator creates a person validator with default rules
func NewPersonValidator() *PersonValidator {
	return &PersonValidator{
		nicknameMinLength:  1,
		nicknameMaxLength:  32,
		nameMinLength:      1,
		nameMaxLength:      100,
		stackItemMaxLength: 32,
	}
}

// Validate checks all person fields against the domain rules
func (v *PersonValidator) Validate(nickname, name string, birthDate valueobjects.Date, stack []string) error {
	if len(nickname) < v.nicknameMinLength {
		return errors.NewValidationError("nickname is required")
	}
	if len(nickname) > v.nicknameMaxLength {
		return errors.NewValidationError(
			fmt.Sprintf("nickname must be at most %d characters", v.nicknameMaxLength))
	}
	if len(name) < v.nameMinLength {
		return errors.NewValidationError("name is required")
	}
	if len(name) > v.nameMaxLength {
		return errors.NewValidationError(
			fmt.Sprintf("name must be at most %d characters", v.nameMaxLength))
	}
	if birthDate.IsZero() {
		return errors.NewValidationError("birth date is required")
	}
	for _, item := range stack {
		if item == "" {
			return errors.NewValidationError("stack entries must not be empty")
		}
		if len(item) > v.stackItemMaxLength {
			return errors.NewValidationError(
				fmt.Sprintf("stack entries must be at most %d characters", v.stackItemMaxLength))
		}
	}
	return nil
}
