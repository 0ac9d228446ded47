package errors

import (
	stderrors "errors"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// InvalidResolution is returned when a resolution value is not one of the supported kinds.
	InvalidResolution ErrorCode = "invalid_resolution"
	// OutOfOrderTrade is returned when a trade is older than the bucket held by a cursor.
	OutOfOrderTrade ErrorCode = "out_of_order_trade"
	// InvalidTrade is returned when a trade cannot be folded into a candle without breaking its invariants.
	InvalidTrade ErrorCode = "invalid_trade"
	// InvalidCandle is returned by storage when a candle breaks its OHLC invariants.
	InvalidCandle ErrorCode = "invalid_candle"
	// PersistenceFailure is returned when the storage collaborator keeps rejecting a candle.
	PersistenceFailure ErrorCode = "persistence_failure"
	// EngineStopped is returned when a trade is submitted to an engine that is not running.
	EngineStopped ErrorCode = "engine_stopped"
	// MalformedMessage is returned when a broker message cannot be decoded into a trade.
	MalformedMessage ErrorCode = "malformed_message"

	// ConfigError represents an invalid or missing configuration value.
	ConfigError ErrorCode = "config_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
)

// String returns the code as a plain string.
func (c ErrorCode) String() string {
	return string(c)
}

// New creates ErrorDetails for the given code.
func New(code ErrorCode, message, field string) *ErrorDetails {
	return NewErrorDetails(message, string(code), field)
}

// IsCode reports whether any error in err's chain is an ErrorDetails carrying code.
func IsCode(err error, code ErrorCode) bool {
	var details *ErrorDetails
	if !stderrors.As(err, &details) {
		return false
	}
	return details.Code == string(code)
}
