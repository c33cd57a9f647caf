package errors

var (
	ErrSameWalletTransfer = &DomainError{
		Code:    "SAME_WALLET_TRANSFER",
		Message: "cannot transfer to the same wallet",
	}
	ErrTransferNotFound = &DomainError{
		Code:    "TRANSFER_NOT_FOUND",
		Message: "transfer not found",
	}
	// ErrTransferInconsistent means a debited transfer could not be
	// completed or compensated. The sender's funds are in an unresolved
	// state and an operator must reconcile manually.
	ErrTransferInconsistent = &DomainError{
		Code:    "TRANSFER_INCONSISTENT",
		Message: "transfer is in an unresolved state, contact support",
	}
	// ErrTransferCompensated means the transfer failed after the sender
	// was debited, and the debit has been reversed in full.
	ErrTransferCompensated = &DomainError{
		Code:    "TRANSFER_COMPENSATED",
		Message: "transfer failed, your funds have been restored",
	}
	ErrDuplicateTransfer = &DomainError{
		Code:    "DUPLICATE_TRANSFER",
		Message: "transfer with this idempotency key is already in progress",
	}
)
