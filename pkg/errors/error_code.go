package errors

// ErrorCode identifies a class of failure.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter  ErrorCode = 100
	ErrCodeInvalidType       ErrorCode = 101
	ErrCodeInvalidPeriod     ErrorCode = 102
	ErrCodeMissingParameter  ErrorCode = 103
	ErrCodeInvalidMultiplier ErrorCode = 104
	ErrCodeInvalidTimeRange  ErrorCode = 105
	ErrCodeUnknownField      ErrorCode = 106

	// Data errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeDataLoadFailed   ErrorCode = 201
	ErrCodeQueryFailed      ErrorCode = 202
	ErrCodeDatasetEmpty     ErrorCode = 203
	ErrCodeInsufficientData ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorConfig        ErrorCode = 302

	// Config errors (400-499)
	ErrCodeConfigReadFailed    ErrorCode = 400
	ErrCodeConfigInvalid       ErrorCode = 401
	ErrCodeConfigVersion       ErrorCode = 402
	ErrCodeConfigSchemaFailure ErrorCode = 403

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703
)
