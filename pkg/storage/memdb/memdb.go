package memdb

import (
	"context"
	"sort"
	"sync"

	"wordmask/pkg/storage"
)

type Store struct {
	mu    sync.Mutex
	words map[string]struct{}
}

func New(words ...string) *Store {
	db := Store{
		words: make(map[string]struct{}),
	}
	if valid, err := storage.ValidateWords(words...); err == nil {
		for _, w := range valid {
			db.words[w] = struct{}{}
		}
	}

	return &db
}

func (db *Store) String() string {
	return "memory"
}

// Words returns the stored words in lexical order.
func (db *Store) Words(ctx context.Context) ([]string, error) {
	db.mu.Lock()
	words := make([]string, 0, len(db.words))
	for w := range db.words {
		words = append(words, w)
	}
	db.mu.Unlock()

	sort.Strings(words)
	return words, nil
}

func (db *Store) AddWords(ctx context.Context, words ...string) error {
	valid, err := storage.ValidateWords(words...)
	if err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, w := range valid {
		db.words[w] = struct{}{}
	}

	return nil
}

func (db *Store) DeleteWord(ctx context.Context, word string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.words[word]; !ok {
		return storage.ErrWordNotFound
	}
	delete(db.words, word)

	return nil
}
