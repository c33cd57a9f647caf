package errors

var (
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrWalletAlreadyExists = &DomainError{
		Code:    "WALLET_ALREADY_EXISTS",
		Message: "wallet already exists for this currency",
	}
	ErrWalletInactive = &DomainError{
		Code:    "WALLET_INACTIVE",
		Message: "wallet is inactive",
	}
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient balance",
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrCurrencyMismatch = &DomainError{
		Code:    "CURRENCY_MISMATCH",
		Message: "currency mismatch",
	}
)
