package i18n

const (
	CommonInternalServerError = "common.internal_server_error"
	CommonBadParam            = "common.bad_param"
	CommonRecordNotFound      = "common.record_not_found"
	CommonUnauthenticated     = "common.unauthenticated"
	SecurityForbidden         = "security.forbidden"

	WorkflowLocked       = "workflow.locked"
	WorkflowInvalidStage = "workflow.invalid_stage"
	WorkflowStaleVersion = "workflow.stale_version"
	WorkflowHistoryWrite = "workflow.history_write_failed"

	AccountUserNotFound = "account.user_not_found"
	AccountUserInactive = "account.user_inactive"

	DeadlineInsufficientData  = "deadline.insufficient_data"
	DeadlineInvalidObligation = "deadline.invalid_obligation"
)
