package postgres

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
)

// Postgres bundles the database handle with a statement builder configured
// for dollar placeholders.
type Postgres struct {
	Database   *sql.DB
	SqlBuilder squirrel.StatementBuilderType
}

// NewDB opens a Postgres connection for the given url
func NewDB(url string) (*Postgres, error) {
	driver := "postgres"
	db, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("error while opening database with driver `%s` and url `%s`. %w", driver, url, err)
	}

	return &Postgres{
		Database:   db,
		SqlBuilder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Close closes the underlying database handle
func (p *Postgres) Close() error {
	if p.Database != nil {
		return p.Database.Close()
	}
	return nil
}
