package voice

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates a brand or voice profile version does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func brandNotFound(brandID uuid.UUID) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("Brand with id %s not found", brandID)}
}

func noProfile(brandID uuid.UUID) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("No voice profile found for brand %s", brandID)}
}

func versionNotFound(version int) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf("Voice profile version %d not found for this brand", version)}
}
