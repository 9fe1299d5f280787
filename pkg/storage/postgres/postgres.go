package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wordmask/pkg/storage"
)

type Store struct {
	db *pgxpool.Pool
}

// New opens a connection pool and pings the database. It returns an error
// wrapping storage.ErrDBNotResponding when the database cannot be reached.
func New(ctx context.Context, conStr string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(conStr)
	if err != nil {
		return nil, err
	}
	cfg.LazyConnect = true

	db, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := Store{
		db: db,
	}

	if err := s.Ping(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDBNotResponding, err)
	}
	return nil
}

func (s *Store) Close() {
	s.db.Close()
}

func (s *Store) String() string {
	return "postgres"
}

// Init creates the banned_words table if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS banned_words (
			word TEXT PRIMARY KEY
		)
	`)
	return err
}

// Words returns all banned words ordered alphabetically.
func (s *Store) Words(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT word
		FROM banned_words
		ORDER BY word
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return words, nil
}

// AddWords inserts a batch of words within a single transaction.
// Words that are already stored are left untouched.
// Returns storage.ErrEmptyWord if no non-blank word is given.
func (s *Store) AddWords(ctx context.Context, words ...string) error {
	valid, err := storage.ValidateWords(words...)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := new(pgx.Batch)
	for _, w := range valid {
		batch.Queue(`
			INSERT INTO banned_words (word)
			VALUES ($1)
			ON CONFLICT (word) DO NOTHING
		`,
			w,
		)
	}

	res := tx.SendBatch(ctx, batch)
	err = res.Close()
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteWord removes a word. It returns storage.ErrWordNotFound if the word is not stored.
func (s *Store) DeleteWord(ctx context.Context, word string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM banned_words
		WHERE word = $1
	`,
		word,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrWordNotFound
	}

	return nil
}
