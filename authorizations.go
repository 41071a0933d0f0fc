package openiddict

import (
	"context"
	"fmt"

	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
)

// Add caches the authorization under its identifier key and evicts every
// compound-shape entry the authorization could previously have been cached
// under with its current attribute values. Eviction only: revoking here would
// expire unrelated entries sharing a signal with this authorization.
func (c *AuthorizationCache[T]) Add(ctx context.Context, authorization T) error {
	if isNil(authorization) {
		return fmt.Errorf("%w: authorization", ErrNilAuthorization)
	}
	identifier := c.store.ID(authorization)
	if identifier == "" {
		return ErrUnresolvedIdentifier
	}
	sig, err := c.signals.GetOrCreate(identifier)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignalUnavailable, err)
	}

	subject := c.store.Subject(authorization)
	client := c.store.ApplicationID(authorization)
	status := c.store.Status(authorization)
	typ := c.store.Type(authorization)

	c.db.Remove(keyBySubjectClient(subject, client))
	c.db.Remove(keyBySubjectClientStatus(subject, client, status))
	c.db.Remove(keyBySubjectClientStatusType(subject, client, status, typ))
	c.db.Remove(keyByApplication(client))
	c.db.Remove(keyBySubject(subject))

	entry := c.db.CreateEntry(keyByID(identifier))
	defer entry.Release()
	entry.AddSignal(sig)
	entry.SetWeight(1)
	entry.SetValue(cached[T]{one: authorization, hit: true})
	entry.Commit()

	return nil
}

// Remove revokes the authorization's invalidation signal, which expires every
// cache entry referencing it, under any query shape, on its next lookup.
func (c *AuthorizationCache[T]) Remove(ctx context.Context, authorization T) error {
	if isNil(authorization) {
		return fmt.Errorf("%w: authorization", ErrNilAuthorization)
	}
	identifier := c.store.ID(authorization)
	if identifier == "" {
		return ErrUnresolvedIdentifier
	}
	c.signals.Cancel(identifier)
	return nil
}

// FindByID returns the authorization with the given identifier. A genuine
// "not found" from the store is memoized too (weight 1, no signal) so
// repeated negative lookups skip the store; such an entry is displaced only
// by a later Add for the identifier or by eviction.
func (c *AuthorizationCache[T]) FindByID(ctx context.Context, identifier string) (T, bool, error) {
	var zero T
	if identifier == "" {
		return zero, false, emptyArgument("identifier")
	}

	k := keyByID(identifier)
	if v, ok := c.db.TryGet(k); ok {
		return v.one, v.hit, nil
	}

	authorization, found, err := c.store.FindByID(ctx, identifier)
	if err != nil {
		return zero, false, err
	}
	if found {
		if err = c.Add(ctx, authorization); err != nil {
			return zero, false, err
		}
		return authorization, true, nil
	}

	entry := c.db.CreateEntry(k)
	defer entry.Release()
	entry.SetWeight(1)
	entry.Commit()

	return zero, false, nil
}

// FindBySubjectClient returns the authorizations created by the subject for
// the given client application.
func (c *AuthorizationCache[T]) FindBySubjectClient(ctx context.Context, subject, client string) ([]T, error) {
	if subject == "" {
		return nil, emptyArgument("subject")
	}
	if client == "" {
		return nil, emptyArgument("client")
	}
	return c.findCollection(ctx, keyBySubjectClient(subject, client), func(ctx context.Context) ([]T, error) {
		return c.store.FindBySubjectClient(ctx, subject, client)
	})
}

// FindBySubjectClientStatus narrows FindBySubjectClient to one status.
func (c *AuthorizationCache[T]) FindBySubjectClientStatus(ctx context.Context, subject, client, status string) ([]T, error) {
	if subject == "" {
		return nil, emptyArgument("subject")
	}
	if client == "" {
		return nil, emptyArgument("client")
	}
	if status == "" {
		return nil, emptyArgument("status")
	}
	return c.findCollection(ctx, keyBySubjectClientStatus(subject, client, status), func(ctx context.Context) ([]T, error) {
		return c.store.FindBySubjectClientStatus(ctx, subject, client, status)
	})
}

// FindBySubjectClientStatusType narrows FindBySubjectClientStatus to one type.
func (c *AuthorizationCache[T]) FindBySubjectClientStatusType(ctx context.Context, subject, client, status, typ string) ([]T, error) {
	if subject == "" {
		return nil, emptyArgument("subject")
	}
	if client == "" {
		return nil, emptyArgument("client")
	}
	if status == "" {
		return nil, emptyArgument("status")
	}
	if typ == "" {
		return nil, emptyArgument("type")
	}
	return c.findCollection(ctx, keyBySubjectClientStatusType(subject, client, status, typ), func(ctx context.Context) ([]T, error) {
		return c.store.FindBySubjectClientStatusType(ctx, subject, client, status, typ)
	})
}

// FindBySubjectClientStatusTypeScopes always queries the store: an open-ended
// scope filter is unsuitable for exact-key memoization. Results are still fed
// through Add so their individual identifier entries stay warm.
func (c *AuthorizationCache[T]) FindBySubjectClientStatusTypeScopes(ctx context.Context, subject, client, status, typ string, scopes []string) ([]T, error) {
	if subject == "" {
		return nil, emptyArgument("subject")
	}
	if client == "" {
		return nil, emptyArgument("client")
	}
	if status == "" {
		return nil, emptyArgument("status")
	}
	if typ == "" {
		return nil, emptyArgument("type")
	}

	authorizations, err := c.store.FindBySubjectClientStatusTypeScopes(ctx, subject, client, status, typ, scopes)
	if err != nil {
		return nil, err
	}
	for _, authorization := range authorizations {
		if err = c.Add(ctx, authorization); err != nil {
			return nil, err
		}
	}
	return authorizations, nil
}

// FindByApplicationID returns all authorizations associated with the client
// application.
func (c *AuthorizationCache[T]) FindByApplicationID(ctx context.Context, identifier string) ([]T, error) {
	if identifier == "" {
		return nil, emptyArgument("identifier")
	}
	return c.findCollection(ctx, keyByApplication(identifier), func(ctx context.Context) ([]T, error) {
		return c.store.FindByApplicationID(ctx, identifier)
	})
}

// FindBySubject returns all authorizations created by the subject.
func (c *AuthorizationCache[T]) FindBySubject(ctx context.Context, subject string) ([]T, error) {
	if subject == "" {
		return nil, emptyArgument("subject")
	}
	return c.findCollection(ctx, keyBySubject(subject), func(ctx context.Context) ([]T, error) {
		return c.store.FindBySubject(ctx, subject)
	})
}

// findCollection is the shared read-through path for collection shapes: on a
// hit the store is never consulted; on a miss the collection is fetched, each
// element is re-added individually, and the whole collection is committed
// under the derived key carrying every element's signal. An error on the miss
// path abandons the scoped entry, leaving nothing partial behind.
func (c *AuthorizationCache[T]) findCollection(ctx context.Context, k *model.Key, query func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.db.TryGet(k); ok {
		return v.many, nil
	}

	authorizations, err := query(ctx)
	if err != nil {
		return nil, err
	}

	entry := c.db.CreateEntry(k)
	defer entry.Release()
	for _, authorization := range authorizations {
		if err = c.Add(ctx, authorization); err != nil {
			return nil, err
		}
		sig, sigErr := c.signals.GetOrCreate(c.store.ID(authorization))
		if sigErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrSignalUnavailable, sigErr)
		}
		entry.AddSignal(sig)
	}
	entry.SetWeight(int64(len(authorizations)))
	entry.SetValue(cached[T]{many: authorizations})
	entry.Commit()

	return authorizations, nil
}
