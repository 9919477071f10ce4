package registry

import (
	"database/sql"
	"fmt"
)

// LoadFromDB loads the full municipality dictionary and province mapping
// from postgres and builds the in-memory registry with the bundled alias
// table. This happens once per run, before any resolution starts.
func LoadFromDB(db *sql.DB) (*Registry, error) {
	rows, err := db.Query(`
		SELECT autonomous_community_code, province_code, municipality_code, check_digit, municipality_name
		FROM ine_municipality
		ORDER BY province_code, municipality_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query municipality dictionary: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.AutonomousCommunityCode, &e.ProvinceCode, &e.MunicipalityCode, &e.CheckDigit, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan municipality row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read municipality dictionary: %w", err)
	}

	provinces, err := loadProvinces(db)
	if err != nil {
		return nil, err
	}

	aliases, err := DefaultAliases()
	if err != nil {
		return nil, err
	}

	return New(entries, provinces, aliases)
}

func loadProvinces(db *sql.DB) ([]Province, error) {
	rows, err := db.Query(`
		SELECT province_code, province_name, autonomous_community_code, autonomous_community_name
		FROM ine_province
		ORDER BY province_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query province mapping: %w", err)
	}
	defer rows.Close()

	var provinces []Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.Code, &p.Name, &p.AutonomousCommunityCode, &p.AutonomousCommunityName); err != nil {
			return nil, fmt.Errorf("failed to scan province row: %w", err)
		}
		provinces = append(provinces, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read province mapping: %w", err)
	}

	return provinces, nil
}
