package introspection

import "errors"

var (
	// ErrUnauthorized indicates the endpoint answered 401.
	ErrUnauthorized = errors.New("introspection: unauthorized")
	// ErrNotFound indicates the endpoint answered 404.
	ErrNotFound = errors.New("introspection: endpoint not found")
	// ErrConnectionRefused indicates nothing is listening at the endpoint.
	ErrConnectionRefused = errors.New("introspection: connection refused")
	// ErrUnsupportedSchemaFile indicates a schema file with an unknown extension.
	ErrUnsupportedSchemaFile = errors.New("introspection: unsupported schema file")
)

// Hint returns a one-line explanation for the known failure classes and ""
// for anything else.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Authentication failed. Check your headers/credentials."
	case errors.Is(err, ErrNotFound):
		return "GraphQL endpoint not found. Check your endpoint URL."
	case errors.Is(err, ErrConnectionRefused):
		return "Connection refused. Make sure the GraphQL server is running."
	}
	return ""
}
