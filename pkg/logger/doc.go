// Package logger builds *slog.Logger instances for toastkit services.
//
// New assembles a text or JSON handler from functional options and wraps it
// with LogHandlerDecorator, which pulls request-scoped values (a request id,
// a toast session id) out of context.Context on every record.
//
// Attribute helpers in attr.go keep key names consistent across packages:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "toastdemo"),
//	    logger.WithContextValue("request_id", middleware.RequestIDKey),
//	)
//	log.InfoContext(ctx, "toast added",
//	    logger.ToastID(id),
//	    logger.ToastKind("success"),
//	)
//
// Error and SessionID return an empty slog.Attr for empty input, so callers
// can pass them unconditionally.
package logger
