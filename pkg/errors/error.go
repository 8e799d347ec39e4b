package errors

// ErrorCode represents a specific error code in the engine.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// OrderInvalidPair is returned when the trading pair does not exist.
	OrderInvalidPair ErrorCode = "order_invalid_pair"
	// OrderPairInactive is returned when the trading pair is deactivated.
	OrderPairInactive ErrorCode = "order_pair_inactive"
	// OrderPriceOutOfRange is returned when the limit price is outside the pair bounds.
	OrderPriceOutOfRange ErrorCode = "order_price_out_of_range"
	// OrderAmountTooSmall is returned when the order amount is below the pair minimum.
	OrderAmountTooSmall ErrorCode = "order_amount_too_small"
	// OrderNotionalTooSmall is returned when price*amount is below the pair minimum notional.
	OrderNotionalTooSmall ErrorCode = "order_notional_too_small"
	// OrderInvalidPayload is returned when the submit request itself is malformed.
	OrderInvalidPayload ErrorCode = "order_invalid_payload"
	// OrderInvalidState is returned when an order cannot transition from its current status.
	OrderInvalidState ErrorCode = "order_invalid_state"
	// OrderNotFound is returned when the order does not exist.
	OrderNotFound ErrorCode = "order_not_found"
	// OrderNoLiquidity is returned when a market order has no opposing liquidity at admission.
	OrderNoLiquidity ErrorCode = "order_no_liquidity"

	// InsufficientFunds is returned when a wallet reservation cannot be covered.
	InsufficientFunds ErrorCode = "insufficient_funds"
	// WalletInvariantViolation indicates a balance invariant breach. It always points
	// at a bug upstream, never at caller input.
	WalletInvariantViolation ErrorCode = "wallet_invariant_violation"
	// WalletNotFound is returned when a wallet does not exist for (user, currency).
	WalletNotFound ErrorCode = "wallet_not_found"

	// SettlementFailed is returned when a trade could not be settled atomically.
	SettlementFailed ErrorCode = "settlement_failed"
	// Unauthorized is returned when the caller does not own the target resource.
	Unauthorized ErrorCode = "unauthorized"
)

// ErrorDetails represents a coded engine error.
type ErrorDetails struct {
	// Message is the human readable error message.
	Message string

	// Code is the machine readable error code.
	Code string

	// Field is the related field the error occurred on, if any.
	Field string
}

// NewErrorDetails creates a new ErrorDetails with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// Error implements the error interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether a given error carries a specific code.
func ErrorCodeEquals(err error, code ErrorCode) bool {
	errDetails, ok := err.(*ErrorDetails)
	if !ok {
		return false
	}

	return errDetails.Code == string(code)
}

// CodeOf returns the code carried by err, or the empty code when err does not
// carry one.
func CodeOf(err error) ErrorCode {
	errDetails, ok := err.(*ErrorDetails)
	if !ok {
		return ""
	}

	return ErrorCode(errDetails.Code)
}
