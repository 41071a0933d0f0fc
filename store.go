package openiddict

import "context"

// AuthorizationStore is the persistent store the cache reads through. The
// cache never mutates the store; it only consumes attribute accessors and the
// query shapes below. Accessors return the empty string when the attribute is
// not set on the authorization.
type AuthorizationStore[T any] interface {
	ID(authorization T) string
	Subject(authorization T) string
	ApplicationID(authorization T) string
	Status(authorization T) string
	Type(authorization T) string

	FindByID(ctx context.Context, identifier string) (authorization T, found bool, err error)
	FindBySubjectClient(ctx context.Context, subject, client string) ([]T, error)
	FindBySubjectClientStatus(ctx context.Context, subject, client, status string) ([]T, error)
	FindBySubjectClientStatusType(ctx context.Context, subject, client, status, typ string) ([]T, error)
	FindBySubjectClientStatusTypeScopes(ctx context.Context, subject, client, status, typ string, scopes []string) ([]T, error)
	FindByApplicationID(ctx context.Context, identifier string) ([]T, error)
	FindBySubject(ctx context.Context, subject string) ([]T, error)
}
