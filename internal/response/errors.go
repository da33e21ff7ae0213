package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Gate ──────────────────────────────────────────────────────────
	ErrInvalidGatePassword ErrCode = "INVALID_GATE_PASSWORD"
	ErrGateTokenRequired   ErrCode = "GATE_TOKEN_REQUIRED"
	ErrGateTokenInvalid    ErrCode = "GATE_TOKEN_INVALID"
	ErrGateTokenExpired    ErrCode = "GATE_TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrScoreOutOfRange  ErrCode = "SCORE_OUT_OF_RANGE"
	ErrNoScoresProvided ErrCode = "NO_SCORES_PROVIDED"
	ErrScheduleDatePast ErrCode = "SCHEDULE_DATE_PAST"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Uploads ───────────────────────────────────────────────────────
	ErrFileTooLarge ErrCode = "FILE_TOO_LARGE"

	// ─── Notifications ─────────────────────────────────────────────────
	ErrPushNotConfigured ErrCode = "PUSH_NOT_CONFIGURED"
	ErrPushSendFailed    ErrCode = "PUSH_SEND_FAILED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrInvalidGatePassword:
		return "The password is incorrect."
	case ErrGateTokenRequired:
		return "A gate token is required for this action."
	case ErrGateTokenInvalid:
		return "The gate token is invalid."
	case ErrGateTokenExpired:
		return "The gate token has expired. Please verify the password again."
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrScoreOutOfRange:
		return "Scores must be between 0 and 100."
	case ErrNoScoresProvided:
		return "At least one student must have a score."
	case ErrScheduleDatePast:
		return "The schedule date must not be in the past."
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "The resource already exists."
	case ErrFileTooLarge:
		return "The file exceeds the size limit."
	case ErrPushNotConfigured:
		return "Push notifications are not configured on this server."
	case ErrPushSendFailed:
		return "Failed to send the push notification."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
