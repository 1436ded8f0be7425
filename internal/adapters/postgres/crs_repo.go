package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/reproj/internal/core/domain"
)

// CRSRepo implements ports.CRSRepository over PostGIS spatial_ref_sys plus a
// local override table. Overrides win over spatial_ref_sys rows.
type CRSRepo struct {
	db *DB
}

// NewCRSRepo creates a new CRSRepo.
func NewCRSRepo(db *DB) *CRSRepo {
	return &CRSRepo{db: db}
}

const listCRSQuery = `
	SELECT auth_name || ':' || auth_srid::text AS id, auth_name, auth_srid,
	       COALESCE(srtext, ''), TRIM(proj4text)
	FROM spatial_ref_sys
	WHERE auth_name IS NOT NULL AND COALESCE(TRIM(proj4text), '') <> ''
	  AND auth_name || ':' || auth_srid::text NOT IN (SELECT id FROM reproj_crs_overrides)
	UNION ALL
	SELECT id, '', 0, title, definition
	FROM reproj_crs_overrides
	ORDER BY id
`

// ListDefinitions returns every spatial_ref_sys row with a PROJ definition,
// with override rows replacing rows of the same identifier.
func (r *CRSRepo) ListDefinitions(ctx context.Context) ([]domain.CRSEntry, error) {
	rows, err := r.db.Pool.Query(ctx, listCRSQuery)
	if err != nil {
		return nil, fmt.Errorf("list crs: %w", err)
	}
	defer rows.Close()

	var entries []domain.CRSEntry
	for rows.Next() {
		var (
			id, authName, titleOrWKT, def string
			authCode                      int
		)
		if err := rows.Scan(&id, &authName, &authCode, &titleOrWKT, &def); err != nil {
			return nil, err
		}
		entries = append(entries, newEntry(id, authName, authCode, titleOrWKT, def))
	}
	return entries, rows.Err()
}

// GetDefinition looks up a single identifier. A missing row is reported as an
// unknown CRS.
func (r *CRSRepo) GetDefinition(ctx context.Context, id string) (*domain.CRSEntry, error) {
	id = strings.TrimSpace(id)

	var title, def string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT title, definition FROM reproj_crs_overrides WHERE id = $1
	`, id).Scan(&title, &def)
	if err == nil {
		e := newEntry(id, "", 0, title, def)
		return &e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get override %s: %w", id, err)
	}

	authName, code, ok := splitID(id)
	if !ok {
		return nil, domain.ErrUnknownCRS(id)
	}
	var srtext string
	err = r.db.Pool.QueryRow(ctx, `
		SELECT COALESCE(srtext, ''), TRIM(proj4text)
		FROM spatial_ref_sys
		WHERE upper(auth_name) = $1 AND auth_srid = $2 AND COALESCE(TRIM(proj4text), '') <> ''
	`, authName, code).Scan(&srtext, &def)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUnknownCRS(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get crs %s: %w", id, err)
	}
	e := newEntry(id, authName, code, srtext, def)
	return &e, nil
}

// UpsertOverride inserts or replaces a local definition.
func (r *CRSRepo) UpsertOverride(ctx context.Context, entry domain.CRSEntry) error {
	if strings.TrimSpace(entry.ID) == "" || strings.TrimSpace(entry.Definition) == "" {
		return fmt.Errorf("override needs an id and a definition")
	}
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO reproj_crs_overrides (id, title, definition)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, definition = EXCLUDED.definition, updated_at = now()
	`, strings.TrimSpace(entry.ID), entry.Title, strings.TrimSpace(entry.Definition))
	return err
}

func newEntry(id, authName string, authCode int, titleOrWKT, def string) domain.CRSEntry {
	title := titleOrWKT
	if name, ok := wktName(titleOrWKT); ok {
		title = name
	}
	if authName == "" {
		authName, authCode, _ = splitID(id)
	}
	return domain.CRSEntry{
		ID:         id,
		AuthName:   authName,
		AuthCode:   authCode,
		Title:      title,
		Definition: def,
		Axis:       domain.AxisOrderFromDefinition(def),
	}
}

// splitID splits "EPSG:4326" into its authority and numeric code.
func splitID(id string) (string, int, bool) {
	auth, code, ok := strings.Cut(id, ":")
	if !ok {
		return "", 0, false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", 0, false
	}
	return strings.ToUpper(auth), n, true
}

// wktName extracts the quoted name of the outermost WKT node, e.g.
// `PROJCS["WGS 84 / UTM zone 33N",...` gives "WGS 84 / UTM zone 33N".
func wktName(wkt string) (string, bool) {
	open := strings.Index(wkt, "[\"")
	if open < 0 {
		return "", false
	}
	rest := wkt[open+2:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
