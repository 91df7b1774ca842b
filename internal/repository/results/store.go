package results

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cutekitek/rankode-jplag/internal/repository/models"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("jplag result not found")

const schema = `CREATE TABLE IF NOT EXISTS contest_jplag (
	id BIGSERIAL PRIMARY KEY,
	contest TEXT NOT NULL,
	problem TEXT NOT NULL,
	language TEXT NOT NULL,
	url TEXT NULL,
	submission_count INTEGER NOT NULL DEFAULT 0,
	UNIQUE (contest, problem, language)
)`

type resultKey struct {
	contest  string
	problem  string
	language string
}

// Store keeps one row per (contest, problem, language).
type Store struct {
	db    *sql.DB
	cache *lru.Cache[resultKey, models.ContestResult]
}

func NewPostgres(dsn string, cacheSize int) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s, err := New(db, cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func New(db *sql.DB, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[resultKey, models.ContestResult](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "failed to create contest_jplag table")
}

// ReplaceContest deletes every stored row of contest and inserts rows in one transaction.
func (s *Store) ReplaceContest(ctx context.Context, contest string, rows []models.ContestResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contest_jplag WHERE contest = $1`, contest); err != nil {
		return errors.Wrap(err, "failed to delete old results")
	}
	for _, row := range rows {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contest_jplag (contest, problem, language, url, submission_count) VALUES ($1, $2, $3, $4, $5)`,
			contest, row.Problem, row.Language, row.URL, row.SubmissionCount)
		if err != nil {
			return errors.Wrapf(err, "failed to insert result %s/%s", row.Problem, row.Language)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit results")
	}

	s.purgeContest(contest)
	return nil
}

// Put stores a single row, replacing the previous row of the same unit.
func (s *Store) Put(ctx context.Context, row models.ContestResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contest_jplag (contest, problem, language, url, submission_count) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contest, problem, language) DO UPDATE SET url = EXCLUDED.url, submission_count = EXCLUDED.submission_count`,
		row.Contest, row.Problem, row.Language, row.URL, row.SubmissionCount)
	if err != nil {
		return errors.Wrap(err, "failed to store result")
	}
	s.cache.Remove(resultKey{row.Contest, row.Problem, row.Language})
	return nil
}

func (s *Store) Get(ctx context.Context, contest, problem, language string) (*models.ContestResult, error) {
	key := resultKey{contest, problem, language}
	if row, ok := s.cache.Get(key); ok {
		return &row, nil
	}

	row := models.ContestResult{Contest: contest, Problem: problem, Language: language}
	var url sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT url, submission_count FROM contest_jplag WHERE contest = $1 AND problem = $2 AND language = $3`,
		contest, problem, language).Scan(&url, &row.SubmissionCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load result")
	}
	if url.Valid {
		row.URL = &url.String
	}

	s.cache.Add(key, row)
	return &row, nil
}

func (s *Store) purgeContest(contest string) {
	for _, key := range s.cache.Keys() {
		if key.contest == contest {
			s.cache.Remove(key)
		}
	}
}
