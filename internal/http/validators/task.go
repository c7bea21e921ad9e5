package validators

import (
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"palmsgig.com/palmsgig/internal/constants"
	dto "palmsgig.com/palmsgig/internal/data_models"
)

// Validation here covers shapes and ranges of supplied values. Business rules
// (ownership, status transitions, draft completeness) live in the service.

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	if err := validateText("description", r.Description); err != nil {
		return err
	}
	if err := validateText("instructions", r.Instructions); err != nil {
		return err
	}
	if !constants.Platform(r.Platform).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid platform")
	}
	if !constants.TaskType(r.TaskType).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task_type")
	}
	if err := validateBudget(r.Budget); err != nil {
		return err
	}
	if err := validateMaxPerformers(r.MaxPerformers); err != nil {
		return err
	}
	return validateExpiresAt(r.ExpiresAt)
}

func ValidateCreateDraftRequest(r *dto.CreateDraftRequest) error {
	if err := validateTitle(r.Title); err != nil {
		return err
	}
	return validateOptionalFields(
		r.Description, r.Instructions, r.Platform, r.TaskType,
		r.Budget, r.MaxPerformers, r.ExpiresAt,
	)
}

func ValidatePublishTaskRequest(r *dto.PublishTaskRequest) error {
	if r.Title != "" {
		if err := validateTitle(r.Title); err != nil {
			return err
		}
	}
	return validateOptionalFields(
		r.Description, r.Instructions, r.Platform, r.TaskType,
		r.Budget, r.MaxPerformers, r.ExpiresAt,
	)
}

func ValidateUpdateTaskRequest(r *dto.UpdateTaskRequest) error {
	if r.Title != nil {
		if err := validateTitle(*r.Title); err != nil {
			return err
		}
	}
	return validateOptionalFields(
		r.Description, r.Instructions, r.Platform, r.TaskType,
		r.Budget, r.MaxPerformers, r.ExpiresAt,
	)
}

func validateOptionalFields(
	description, instructions, platform, taskType *string,
	budget *decimal.Decimal,
	maxPerformers *int,
	expiresAt *time.Time,
) error {
	if description != nil {
		if err := validateText("description", *description); err != nil {
			return err
		}
	}
	if instructions != nil {
		if err := validateText("instructions", *instructions); err != nil {
			return err
		}
	}
	if platform != nil && !constants.Platform(*platform).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid platform")
	}
	if taskType != nil && !constants.TaskType(*taskType).Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task_type")
	}
	if budget != nil {
		if err := validateBudget(*budget); err != nil {
			return err
		}
	}
	if maxPerformers != nil {
		if err := validateMaxPerformers(*maxPerformers); err != nil {
			return err
		}
	}
	return validateExpiresAt(expiresAt)
}

func validateTitle(title string) error {
	// bounds are in characters, not bytes
	if n := utf8.RuneCountInString(title); n < constants.TitleMinLen || n > constants.TitleMaxLen {
		return echo.NewHTTPError(http.StatusBadRequest, "title must be between 3 and 255 characters")
	}
	return nil
}

func validateText(field, value string) error {
	if n := utf8.RuneCountInString(value); n < constants.TextMinLen || n > constants.TextMaxLen {
		return echo.NewHTTPError(http.StatusBadRequest, field+" must be between 10 and 5000 characters")
	}
	return nil
}

func validateBudget(budget decimal.Decimal) error {
	if !budget.IsPositive() {
		return echo.NewHTTPError(http.StatusBadRequest, "budget must be greater than zero")
	}
	if budget.Exponent() < -2 {
		return echo.NewHTTPError(http.StatusBadRequest, "budget must have at most 2 decimal places")
	}
	return nil
}

func validateMaxPerformers(n int) error {
	if n < 1 || n > constants.MaxPerformersCap {
		return echo.NewHTTPError(http.StatusBadRequest, "max_performers must be between 1 and 10000")
	}
	return nil
}

func validateExpiresAt(t *time.Time) error {
	if t != nil && t.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "expires_at must be in the future")
	}
	return nil
}
