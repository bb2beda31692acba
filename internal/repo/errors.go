package repo

import "errors"

// Ошибки хранилищ task groups.
var (
	// ErrNotFound — task group с таким id нет ни в одном chunk.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState — данные хранилища противоречат друг другу
	// (например, item ссылается на несуществующий chunk).
	ErrInvalidState = errors.New("invalid state")
)
