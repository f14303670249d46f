// Package common contains the ambient layer shared by all gedis packages:
// the error taxonomy, session and client configuration, the logger factory
// and the process wide metrics.
//
// Errors:
//
//	Every failure the engine reports can be matched with errors.Is against one of
//	the sentinels ErrConnection, ErrSessionNotFound, ErrUnsupportedKeyType,
//	ErrInvalidTTL, ErrTopologyParse, ErrValueParse or ErrKeyExists. Transport
//	failures are wrapped in *ConnectionError which keeps the original message.
//
// Logging:
//
//	Packages obtain named loggers through the dragonboat logger facade
//	(logger.GetLogger("conn")). InitLoggers installs a factory that writes
//	through zerolog as console or JSON output.
package common
