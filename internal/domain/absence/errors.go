package absence

import "errors"

var (
	ErrAbsenceNotFound         = errors.New("absence not found")
	ErrOverlappingAbsence      = errors.New("absence overlaps an existing request")
	ErrAbsenceAlreadyProcessed = errors.New("absence already processed")
	ErrCannotDecideOwn         = errors.New("you cannot approve or reject your own absence")
	ErrCannotCancel            = errors.New("absence can no longer be cancelled")
)
