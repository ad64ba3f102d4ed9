package repositories

import "errors"

var (
	// ErrNotFound reports an absent row, as opposed to a storage failure.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey reports a unique-key conflict detected before insert.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrCorruptContent reports a row whose tagged payload failed to decode
	// as its expected variant. Distinct from ErrNotFound: the row exists.
	ErrCorruptContent = errors.New("corrupt content payload")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, ErrDuplicateKey)
}

func IsCorruptContentError(err error) bool {
	return errors.Is(err, ErrCorruptContent)
}
