// Package errors provides structured error handling for the game engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeNoActiveSession   Code = "NO_ACTIVE_SESSION"
	CodeInvalidDifficulty Code = "INVALID_DIFFICULTY"
	CodeEmptyPlayerID     Code = "EMPTY_PLAYER_ID"

	// Turn errors
	CodeInvalidAction Code = "INVALID_ACTION"

	// Rate limit errors
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"

	// Oracle errors
	CodeOracleUnavailable Code = "ORACLE_UNAVAILABLE"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"
)
