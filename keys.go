package openiddict

import "github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"

// Cache keys are derived from a shape discriminator plus the exact parameter
// values, joined with a unit separator so adjacent fields cannot alias. The
// scopes-qualified query shape deliberately has no key: an open-ended filter
// is unsuitable for exact-match memoization.
type keyShape byte

const (
	shapeID keyShape = iota + 1
	shapeSubjectClient
	shapeSubjectClientStatus
	shapeSubjectClientStatusType
	shapeApplication
	shapeSubject
)

const keySeparator = 0x1f

func deriveKey(shape keyShape, parts ...string) *model.Key {
	size := 1
	for _, p := range parts {
		size += len(p) + 1
	}

	material := make([]byte, 0, size)
	material = append(material, byte(shape))
	for _, p := range parts {
		material = append(material, keySeparator)
		material = append(material, p...)
	}

	return model.NewKey(material)
}

func keyByID(identifier string) *model.Key {
	return deriveKey(shapeID, identifier)
}

func keyBySubjectClient(subject, client string) *model.Key {
	return deriveKey(shapeSubjectClient, subject, client)
}

func keyBySubjectClientStatus(subject, client, status string) *model.Key {
	return deriveKey(shapeSubjectClientStatus, subject, client, status)
}

func keyBySubjectClientStatusType(subject, client, status, typ string) *model.Key {
	return deriveKey(shapeSubjectClientStatusType, subject, client, status, typ)
}

func keyByApplication(identifier string) *model.Key {
	return deriveKey(shapeApplication, identifier)
}

func keyBySubject(subject string) *model.Key {
	return deriveKey(shapeSubject, subject)
}
