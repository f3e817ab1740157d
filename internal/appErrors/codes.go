package appErrors

// Коды ошибок сгруппированные по доменам
const (
	// Аутентификация и авторизация
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Валидация
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	CodeInvalidUserRole  ErrorCode = "INVALID_USER_ROLE"

	// Провижининг аккаунтов
	CodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	CodePaymentIncomplete  ErrorCode = "PAYMENT_INCOMPLETE"
	CodeProvisioningFailed ErrorCode = "PROVISIONING_FAILED"

	// Signup state machine
	CodeSignupNotFound      ErrorCode = "SIGNUP_NOT_FOUND"
	CodeSignupStepMismatch  ErrorCode = "SIGNUP_STEP_MISMATCH"
	CodeCallInFlight        ErrorCode = "CALL_IN_FLIGHT"
	CodeInvalidCode         ErrorCode = "INVALID_VERIFICATION_CODE"
	CodeProvisioningTimeout ErrorCode = "PROVISIONING_TIMEOUT"
	CodeSignInFailed        ErrorCode = "SIGN_IN_FAILED"

	// Ресурсы
	CodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"

	// Бизнес-логика
	CodeEmailAlreadyExists ErrorCode = "EMAIL_ALREADY_EXISTS"

	// Системные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
)
