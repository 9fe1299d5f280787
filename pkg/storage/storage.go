// Package storage defines editable stores for banned phrases.
package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrWordNotFound    = errors.New("word not found")
	ErrEmptyWord       = errors.New("empty word")
	ErrDBNotResponding = errors.New("DB not responding")
)

// Storage keeps the banned phrases. Every Storage is also a dictionary source.
type Storage interface {
	Words(ctx context.Context) ([]string, error)
	AddWords(ctx context.Context, words ...string) error
	DeleteWord(ctx context.Context, word string) error
}

// ValidateWords trims words and drops the empty ones. It returns ErrEmptyWord
// when nothing is left.
func ValidateWords(words ...string) ([]string, error) {
	valid := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			valid = append(valid, w)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyWord
	}

	return valid, nil
}
