package fallback

import (
	"errors"
	"log/slog"

	"github.com/tooldex/tooldex/domain/registry"
)

// run executes the database operation when the group is routed to the
// database, degrading to the file operation on backend failure. ErrNotFound
// is a domain answer, not a backend failure, and is returned as-is.
func run[T any](logger *slog.Logger, router *Router, kind Kind, op string, db func() (T, error), file func() (T, error)) (T, error) {
	if !router.UseDatabase(kind) {
		return file()
	}
	result, err := db()
	if err == nil || errors.Is(err, registry.ErrNotFound) {
		return result, err
	}
	logger.Warn("database call failed, falling back to file storage",
		"kind", string(kind),
		"operation", op,
		"error", err,
	)
	return file()
}

// runErr is run for operations that return only an error.
func runErr(logger *slog.Logger, router *Router, kind Kind, op string, db func() error, file func() error) error {
	_, err := run(logger, router, kind, op,
		func() (struct{}, error) { return struct{}{}, db() },
		func() (struct{}, error) { return struct{}{}, file() },
	)
	return err
}
