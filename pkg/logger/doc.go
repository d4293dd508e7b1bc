// Package logger builds *slog.Logger instances from functional options and
// provides the attribute helpers used across this module.
//
// New picks a JSON or text handler, applies static attributes and wraps the
// result in LogHandlerDecorator, which adds attributes extracted from the
// context of every *Context logging call (request ids, for example).
// Config carries the same knobs as env variables for the binaries.
//
// Library packages never create loggers on their own. They accept one through
// an option and fall back to Discard, so nothing is written unless the host
// application asks for it.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithTextFormatter(),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//
//	log.WarnContext(ctx, "unsupported signature algorithm",
//	    logger.KeyID(kid),
//	    logger.Algorithm(alg, digest),
//	)
//
// Helpers that receive a zero value (nil error, empty request id) return an
// empty slog.Attr, which slog omits from the output.
package logger
