package indexdb

import (
	"context"
	"database/sql"
)

// SiteTotal is the mined output of one generator coordinate across its lifetimes.
type SiteTotal struct {
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
	Mined int    `json:"mined"`
}

// MinedBySite sums MINED counts per site, most productive first.
func (s *SQLiteIndex) MinedBySite(ctx context.Context, limit int) ([]SiteTotal, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT world, x, y, z, SUM(count) AS mined
		FROM generator_events
		WHERE kind = ?
		GROUP BY world, x, y, z
		ORDER BY mined DESC, world, x, y, z
		LIMIT ?`, "MINED", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SiteTotal
	for rows.Next() {
		var t SiteTotal
		if err := rows.Scan(&t.World, &t.X, &t.Y, &t.Z, &t.Mined); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountByKind returns how many events of each kind were indexed.
func (s *SQLiteIndex) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM generator_events GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// ConfigDigest returns the stored digest of a config row.
func (s *SQLiteIndex) ConfigDigest(ctx context.Context, name string) (string, bool, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM config WHERE name = ?`, name).Scan(&digest)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}
