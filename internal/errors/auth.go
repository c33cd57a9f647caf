package errors

var (
	ErrInvalidCredentials = &DomainError{
		Code:    "INVALID_CREDENTIALS",
		Message: "invalid email or password",
	}
	ErrUserAlreadyExists = &DomainError{
		Code:    "USER_ALREADY_EXISTS",
		Message: "user already exists",
	}
	ErrUserNotFound = &DomainError{
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrCaptchaRequired = &DomainError{
		Code:    "CAPTCHA_REQUIRED",
		Message: "captcha verification required",
	}
	ErrCaptchaFailed = &DomainError{
		Code:    "CAPTCHA_VALIDATION_FAILED",
		Message: "captcha verification failed",
	}
)
