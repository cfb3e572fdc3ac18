package sqlite

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"

	"ratreader/internal/ratreader"
)

// Ensure Repo implements the Repository interface
var _ ratreader.Repository = (*Repo)(nil)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) Repo {
	return Repo{db: db}
}

// sqlite primary result code for a violated unique constraint.
const codeConstraintUnique = 2067

func isUniqueViolation(err error) bool {
	sqliteErr := &sqlite.Error{}
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == codeConstraintUnique
}
