package library

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"tattoovision/internal/domain"
	"tattoovision/internal/infra"
	"tattoovision/internal/sqlinline"
)

// PostgresStore keeps one row per design in tattoo_designs. Insertion order
// comes from the seq column.
type PostgresStore struct {
	db infra.SQLExecutor
}

func NewPostgresStore(db infra.SQLExecutor) *PostgresStore {
	return &PostgresStore{db: db}
}

type designRow struct {
	ID                string    `db:"id"`
	Description       string    `db:"description"`
	StylePreferences  string    `db:"style_preferences"`
	Keywords          string    `db:"keywords"`
	ReferenceImage    string    `db:"reference_image"`
	GeneratedImageURI string    `db:"generated_image_uri"`
	CreatedAt         time.Time `db:"created_at"`
}

func (r designRow) design() domain.TattooDesign {
	return domain.TattooDesign{
		ID:                r.ID,
		Description:       r.Description,
		StylePreferences:  r.StylePreferences,
		Keywords:          r.Keywords,
		ReferenceImage:    r.ReferenceImage,
		GeneratedImageURI: r.GeneratedImageURI,
		CreatedAt:         r.CreatedAt.UTC(),
	}
}

func (s *PostgresStore) Insert(ctx context.Context, d domain.TattooDesign) error {
	_, err := s.db.Exec(ctx, sqlinline.QInsertDesign,
		d.ID, d.Description, d.StylePreferences, d.Keywords, d.ReferenceImage, d.GeneratedImageURI, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("library: insert design: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.TattooDesign, error) {
	var rows []designRow
	if err := pgxscan.Select(ctx, s.db, &rows, sqlinline.QListDesigns); err != nil {
		return nil, fmt.Errorf("library: list designs: %w", err)
	}
	designs := make([]domain.TattooDesign, 0, len(rows))
	for _, r := range rows {
		designs = append(designs, r.design())
	}
	return designs, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.TattooDesign, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.TattooDesign{}, fmt.Errorf("%w: design %s", domain.ErrNotFound, id)
	}
	var row designRow
	if err := pgxscan.Get(ctx, s.db, &row, sqlinline.QGetDesign, id); err != nil {
		if pgxscan.NotFound(err) {
			return domain.TattooDesign{}, fmt.Errorf("%w: design %s", domain.ErrNotFound, id)
		}
		return domain.TattooDesign{}, fmt.Errorf("library: get design: %w", err)
	}
	return row.design(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	tag, err := s.db.Exec(ctx, sqlinline.QDeleteDesign, id)
	if err != nil {
		return false, fmt.Errorf("library: delete design: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

var _ Store = (*PostgresStore)(nil)
