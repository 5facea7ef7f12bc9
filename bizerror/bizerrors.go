package bizerror

import (
	"errors"
	"net/http"
	"taxflow/i18n"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	ErrWorkflowLocked = errors.New("workflow record is completed and locked")
	ErrInvalidStage   = errors.New("stage is not selectable for this workflow type")
	ErrStaleVersion   = errors.New("workflow record has been modified concurrently")

	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")

	ErrInsufficientData  = errors.New("insufficient data to compute due date")
	ErrInvalidObligation = errors.New("obligation does not apply to this filing period")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}

func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return i18n.CommonBadParam
}

func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := i18n.CommonBadParam
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: i18n.CommonBadParam, Message: message}
}

// ErrHistoryWrite marks a failed audit history append. The owning
// transition must fail entirely, so it surfaces as a server error.
type ErrHistoryWrite struct {
	Cause error
}

func (e *ErrHistoryWrite) Unwrap() error {
	return e.Cause
}

func (e *ErrHistoryWrite) Error() string {
	if e.Cause != nil {
		return "history write failed: " + e.Cause.Error()
	}
	return "history write failed"
}

func (e *ErrHistoryWrite) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: i18n.WorkflowHistoryWrite, Message: e.Error()}
}
