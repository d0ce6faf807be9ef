package locprop

import (
	"context"

	"github.com/rotisserie/eris"
)

// ClassCount is one row of the class distribution.
type ClassCount struct {
	Class int
	Count int
}

// DepartmentCount is one row of the per-department breakdown.
type DepartmentCount struct {
	Department string
	Count      int
}

// StatusReport summarizes pair resolution progress.
type StatusReport struct {
	Total        int
	Resolved     int
	WithDistance int
	Classes      []ClassCount
	Departments  []DepartmentCount
}

// StatusReport reads resolution statistics. topDepartments caps the
// per-department breakdown; zero skips it. The department bucket follows the
// resolver's rule: overseas prefixes (97/98) keep three characters, everything
// else two.
func (s *PostgresStore) StatusReport(ctx context.Context, topDepartments int) (*StatusReport, error) {
	var r StatusReport

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE distance_meters IS NOT NULL AND class_code IS NOT NULL),
		       COUNT(*) FILTER (WHERE distance_meters IS NOT NULL)
		FROM owners_housing`).Scan(&r.Total, &r.Resolved, &r.WithDistance)
	if err != nil {
		return nil, eris.Wrap(err, "locprop: count pairs")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT class_code, COUNT(*)
		FROM owners_housing
		WHERE class_code IS NOT NULL
		GROUP BY class_code
		ORDER BY class_code`)
	if err != nil {
		return nil, eris.Wrap(err, "locprop: class breakdown")
	}
	defer rows.Close()

	for rows.Next() {
		var c ClassCount
		if err := rows.Scan(&c.Class, &c.Count); err != nil {
			return nil, eris.Wrap(err, "locprop: scan class row")
		}
		r.Classes = append(r.Classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "locprop: iterate class rows")
	}

	if topDepartments <= 0 {
		return &r, nil
	}

	deptRows, err := s.pool.Query(ctx, `
		SELECT COALESCE(UPPER(
		           CASE WHEN LEFT(a.postal_code, 2) IN ('97', '98')
		                THEN LEFT(a.postal_code, 3)
		                ELSE LEFT(a.postal_code, 2)
		           END), '??') AS dept,
		       COUNT(*)
		FROM owners_housing oh
		JOIN ban_addresses a ON a.ref_id = oh.owner_id AND a.address_kind = 'Owner'
		WHERE oh.class_code IS NOT NULL
		GROUP BY dept
		ORDER BY COUNT(*) DESC
		LIMIT $1`, topDepartments)
	if err != nil {
		return nil, eris.Wrap(err, "locprop: department breakdown")
	}
	defer deptRows.Close()

	for deptRows.Next() {
		var d DepartmentCount
		if err := deptRows.Scan(&d.Department, &d.Count); err != nil {
			return nil, eris.Wrap(err, "locprop: scan department row")
		}
		r.Departments = append(r.Departments, d)
	}
	return &r, eris.Wrap(deptRows.Err(), "locprop: iterate department rows")
}
