// Package requestid attaches a correlation id to every HTTP request.
//
// A valid incoming X-Request-ID (alphanumerics, dash, underscore, at most 128
// chars) is reused; anything else is replaced by a fresh UUIDv4. The id is
// stored in the request context and echoed in the response header.
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// Every record logged with the request context then carries request_id.
package requestid
