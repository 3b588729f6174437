// Package businessflow contains the core business logic and use cases for conflict detection workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")

	// Deal-related errors
	ErrDealNotFound    = errors.New("deal not found")
	ErrDealNotEditable = errors.New("deal is not editable")

	// Exclusivity rule errors
	ErrRuleFetchFailed     = errors.New("failed to load exclusivity rules")
	ErrInvalidRuleScope    = errors.New("invalid rule scope")
	ErrInvalidPlatform     = errors.New("invalid platform")
	ErrInvalidRegion       = errors.New("invalid region")
	ErrInvalidCategoryPath = errors.New("invalid category path")
	ErrInvalidRuleWindow   = errors.New("end date must be after start date")

	// Deliverable errors
	ErrDeliverableNotFound = errors.New("deliverable not found")

	// Conflict errors
	ErrConflictNotFound      = errors.New("conflict not found")
	ErrConflictPersistFailed = errors.New("failed to persist conflicts")

	// Idempotency errors
	ErrIdempotencyInProgress = errors.New("an identical request is still in progress")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrInvalidConflictStatus = errors.New("conflict status must be active, resolved, or all")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsDealNotFound(err error) bool {
	return errors.Is(err, ErrDealNotFound)
}

func IsDealNotEditable(err error) bool {
	return errors.Is(err, ErrDealNotEditable)
}

func IsRuleFetchFailed(err error) bool {
	return errors.Is(err, ErrRuleFetchFailed)
}

func IsInvalidRuleScope(err error) bool {
	return errors.Is(err, ErrInvalidRuleScope)
}

func IsInvalidPlatform(err error) bool {
	return errors.Is(err, ErrInvalidPlatform)
}

func IsInvalidRegion(err error) bool {
	return errors.Is(err, ErrInvalidRegion)
}

func IsInvalidCategoryPath(err error) bool {
	return errors.Is(err, ErrInvalidCategoryPath)
}

func IsInvalidRuleWindow(err error) bool {
	return errors.Is(err, ErrInvalidRuleWindow)
}

func IsDeliverableNotFound(err error) bool {
	return errors.Is(err, ErrDeliverableNotFound)
}

func IsConflictNotFound(err error) bool {
	return errors.Is(err, ErrConflictNotFound)
}

func IsConflictPersistFailed(err error) bool {
	return errors.Is(err, ErrConflictPersistFailed)
}

func IsIdempotencyInProgress(err error) bool {
	return errors.Is(err, ErrIdempotencyInProgress)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsInvalidConflictStatus(err error) bool {
	return errors.Is(err, ErrInvalidConflictStatus)
}
