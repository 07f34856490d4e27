package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/sushihentaime/bloglist/internal/common"
)

// PostgresStore keeps every collection in the documents table created by the migrations, one
// JSONB body per row. Bodies are stored as relaxed extended JSON so bson tags stay authoritative.
type PostgresStore struct {
	db *sql.DB
}

type postgresCollection struct {
	db   *sql.DB
	name string
}

var identifierRX = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*$")

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{db: s.db, name: name}
}

func (s *PostgresStore) EnsureUnique(ctx context.Context, collection, field string) error {
	if !identifierRX.MatchString(collection) || !identifierRX.MatchString(field) {
		return fmt.Errorf("invalid unique index on %q.%q", collection, field)
	}

	query := fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS documents_%[1]s_%[2]s_key
		ON documents ((body->>'%[2]s'))
		WHERE collection = '%[1]s'`, collection, field)

	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Close() error {
	return common.CloseDB(s.db)
}

func parsePostgresID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, common.ErrMalformedID
	}
	return u, nil
}

// UniqueViolation is a helper function to check if the error is a unique constraint error.
func UniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func postgresError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrRecordNotFound
	case UniqueViolation(err):
		return common.ErrDuplicateKey
	default:
		return err
	}
}

// rowToRaw rebuilds the bson document of a row, putting the id back under "_id".
func rowToRaw(id uuid.UUID, body []byte) (bson.Raw, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON(body, false, &d); err != nil {
		return nil, err
	}
	return bson.Marshal(withID(d, id.String()))
}

func (c *postgresCollection) FindAll(ctx context.Context, dst any) error {
	query := `
		SELECT id, body
		FROM documents
		WHERE collection = $1
		ORDER BY seq`

	rows, err := c.db.QueryContext(ctx, query, c.name)
	if err != nil {
		return err
	}
	defer rows.Close()

	var raws []bson.Raw
	for rows.Next() {
		var id uuid.UUID
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return err
		}

		raw, err := rowToRaw(id, body)
		if err != nil {
			return err
		}
		raws = append(raws, raw)
	}

	if err := rows.Err(); err != nil {
		return err
	}

	return decodeAll(dst, raws)
}

func (c *postgresCollection) FindByID(ctx context.Context, id string, dst any) error {
	u, err := parsePostgresID(id)
	if err != nil {
		return err
	}

	query := `
		SELECT body
		FROM documents
		WHERE collection = $1 AND id = $2`

	var body []byte
	err = c.db.QueryRowContext(ctx, query, c.name, u).Scan(&body)
	if err != nil {
		return postgresError(err)
	}

	raw, err := rowToRaw(u, body)
	if err != nil {
		return err
	}

	return decodeOne(raw, dst)
}

func (c *postgresCollection) Insert(ctx context.Context, doc any) (string, error) {
	d, err := toDocument(doc)
	if err != nil {
		return "", err
	}

	body, err := bson.MarshalExtJSON(d, false, false)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3::jsonb)`

	id := uuid.New()
	_, err = c.db.ExecContext(ctx, query, c.name, id, string(body))
	if err != nil {
		return "", postgresError(err)
	}

	return id.String(), nil
}

func (c *postgresCollection) DeleteByID(ctx context.Context, id string) error {
	u, err := parsePostgresID(id)
	if err != nil {
		return err
	}

	query := `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2`

	res, err := c.db.ExecContext(ctx, query, c.name, u)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (c *postgresCollection) UpdateByID(ctx context.Context, id string, fields map[string]any, dst any) error {
	u, err := parsePostgresID(id)
	if err != nil {
		return err
	}

	set := bson.D{}
	for key, value := range fields {
		if key != idField {
			set = append(set, bson.E{Key: key, Value: value})
		}
	}

	patch, err := bson.MarshalExtJSON(set, false, false)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET body = body || $3::jsonb
		WHERE collection = $1 AND id = $2
		RETURNING body`

	var body []byte
	err = c.db.QueryRowContext(ctx, query, c.name, u, string(patch)).Scan(&body)
	if err != nil {
		return postgresError(err)
	}

	raw, err := rowToRaw(u, body)
	if err != nil {
		return err
	}

	return decodeOne(raw, dst)
}

func (c *postgresCollection) AppendToArray(ctx context.Context, id, field, value string) error {
	u, err := parsePostgresID(id)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET body = jsonb_set(body, ARRAY[$3::text],
			COALESCE(NULLIF(body->($3::text), 'null'::jsonb), '[]'::jsonb) || jsonb_build_array($4::text))
		WHERE collection = $1 AND id = $2`

	res, err := c.db.ExecContext(ctx, query, c.name, u, field, value)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}

func (c *postgresCollection) RemoveFromArray(ctx context.Context, id, field, value string) error {
	u, err := parsePostgresID(id)
	if err != nil {
		return err
	}

	query := `
		UPDATE documents
		SET body = jsonb_set(body, ARRAY[$3::text], COALESCE(
			(SELECT jsonb_agg(e)
			 FROM jsonb_array_elements(COALESCE(NULLIF(body->($3::text), 'null'::jsonb), '[]'::jsonb)) AS e
			 WHERE e <> to_jsonb($4::text)),
			'[]'::jsonb))
		WHERE collection = $1 AND id = $2`

	res, err := c.db.ExecContext(ctx, query, c.name, u, field, value)
	if err != nil {
		return err
	}

	return expectOneRow(res)
}
