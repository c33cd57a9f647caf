package errors

var (
	ErrFeeRuleNotFound = &DomainError{
		Code:    "FEE_RULE_NOT_FOUND",
		Message: "fee rule not found",
	}
)
