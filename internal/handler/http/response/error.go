package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/absence"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/clock"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/team"
	"github.com/cmlabs-hris/worktime-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/timeaccount"
	"github.com/cmlabs-hris/worktime-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Authentication
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, jwt.ErrInvalidTokenType),
		errors.Is(err, user.ErrActorMissing):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrAccountInactive),
		errors.Is(err, user.ErrUserInactive):
		Forbidden(w, "Account is inactive")

	// Authorization
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, team.ErrForbiddenTeam),
		errors.Is(err, team.ErrForbiddenUser),
		errors.Is(err, absence.ErrCannotDecideOwn):
		Forbidden(w, err.Error())

	// Not found
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, company.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, team.ErrTeamNotFound):
		NotFound(w, "Team not found")
	case errors.Is(err, clock.ErrEventNotFound):
		NotFound(w, "Clock event not found")
	case errors.Is(err, absence.ErrAbsenceNotFound):
		NotFound(w, "Absence not found")

	// Conflicts with current state
	case errors.Is(err, user.ErrUserEmailExists),
		errors.Is(err, team.ErrTeamNameExists),
		errors.Is(err, company.ErrHolidayExists),
		errors.Is(err, clock.ErrAlreadyClockedIn),
		errors.Is(err, clock.ErrNotClockedIn),
		errors.Is(err, absence.ErrOverlappingAbsence),
		errors.Is(err, absence.ErrAbsenceAlreadyProcessed),
		errors.Is(err, absence.ErrCannotCancel):
		Conflict(w, err.Error())

	// Rejected input
	case errors.Is(err, clock.ErrEventInFuture),
		errors.Is(err, team.ErrInvalidManager),
		errors.Is(err, team.ErrNotTeamMember),
		errors.Is(err, user.ErrCannotDeactivateSelf),
		errors.Is(err, timeaccount.ErrInvalidWorkdayStart),
		errors.Is(err, timeaccount.ErrInvalidGrace),
		errors.Is(err, timeaccount.ErrInvalidDailyMinutes),
		errors.Is(err, timeaccount.ErrNoWorkingDays):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
