package installment

import "github.com/goldshop/backend/internal/domain/shared"

// Error codes for the installment ledger. All of them are recoverable by the
// caller; none indicate data corruption.
const (
	ErrCodeInvalidContractSpec = "INVALID_CONTRACT_SPEC"
	ErrCodeInvalidEntry        = "INVALID_ENTRY"
	ErrCodeStaleContract       = "STALE_CONTRACT"
	ErrCodeStalePrice          = "STALE_PRICE"
	ErrCodeOverpayment         = "OVERPAYMENT"
	ErrCodeMissingAuditInfo    = "MISSING_AUDIT_INFO"
)

// NewInvalidContractSpecError reports malformed contract creation input
func NewInvalidContractSpecError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidContractSpec, message)
}

// NewInvalidEntryError reports an entry that would violate the balance-sign policy
func NewInvalidEntryError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeInvalidEntry, message)
}

// NewStaleContractError reports an operation on a completed or cancelled contract
func NewStaleContractError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeStaleContract, message)
}

// NewStalePriceError reports a quote older than the staleness threshold
func NewStalePriceError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeStalePrice, message)
}

// NewOverpaymentError reports cash exceeding the payoff need on a contract
// that disallows credit balances
func NewOverpaymentError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeOverpayment, message)
}

// NewMissingAuditInfoError reports a manual entry lacking reason or actor
func NewMissingAuditInfoError(message string) *shared.DomainError {
	return shared.NewDomainError(ErrCodeMissingAuditInfo, message)
}
