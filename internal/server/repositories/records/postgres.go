package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/dmitrijs2005/failvault/internal/dbx"
	"github.com/dmitrijs2005/failvault/internal/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db   dbx.DBTX
	opts Options
}

func NewPostgresRepository(db dbx.DBTX, opts Options) *PostgresRepository {
	return &PostgresRepository{db: db, opts: opts}
}

// List returns every record, newest first, with defaults applied to
// columns that are NULL.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Record, error) {
	query :=
		`SELECT id, title, author, abstract, category, price, findings_ciphertext, findings_nonce,
		        payee_address, date, token_uri, created_at
		 FROM experiments
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		var (
			s                      models.Stored
			category, price, payee sql.NullString
			ciphertext, nonce      []byte
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Author, &s.Abstract, &category, &price,
			&ciphertext, &nonce, &payee, &s.Date, &s.TokenURI, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		findings, err := r.opts.Sealer.Open(ciphertext, nonce)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", s.ID, err)
		}
		s.Findings = findings
		s.Category = nullable(category)
		s.Price = nullable(price)
		s.PayeeAddress = nullable(payee)

		result = append(result, models.ResolveStored(s, r.opts.OperatorAddress))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Create validates the draft, applies defaults and stores it. The returned
// record carries the assigned id and creation time.
func (r *PostgresRepository) Create(ctx context.Context, d models.Draft) (*models.Record, error) {
	rec, err := d.Resolve(r.opts.OperatorAddress)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.NewString()

	ciphertext, nonce := r.opts.Sealer.Seal(rec.Findings)

	query :=
		`INSERT INTO experiments (id, title, author, abstract, category, price, findings_ciphertext,
		                          findings_nonce, payee_address, date, token_uri)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		rec.ID, rec.Title, rec.Author, rec.Abstract, string(rec.Category), rec.Price.String(),
		ciphertext, nonce, rec.PayeeAddress, rec.Date, rec.TokenURI).Scan(&rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// Delete removes a record. Unknown ids, including ones that are not valid
// uuids, report common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM experiments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func nullable(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
