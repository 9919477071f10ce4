// Package importer loads the INE registry files and cleaned SEPE CSVs
// into postgres. Files are header-indexed, so column order in the
// source exports does not matter.
package importer

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Importer handles CSV imports into the reference and source tables.
type Importer struct {
	db *sql.DB
}

// New creates an importer over an open database.
func New(db *sql.DB) *Importer {
	return &Importer{db: db}
}

// headerIndex maps lowercased column names to positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return idx
}

// field returns the trimmed value of a named column, or "" if the
// column is absent or the record is short.
func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// intField parses a named column as an integer; empty is 0.
func intField(record []string, idx map[string]int, name string) (int, error) {
	s := field(record, idx, name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return v, nil
}

// importFile runs the shared read loop: open, index the header, map and
// insert each record, report progress and an error tally.
func (im *Importer) importFile(filename, label string, insert func(record []string, idx map[string]int) error) error {
	fmt.Printf("Importing %s from %s...\n", label, filename)

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	idx := headerIndex(header)

	imported := 0
	errors := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("Error reading CSV record: %v\n", err)
			errors++
			continue
		}

		if err := insert(record, idx); err != nil {
			fmt.Printf("Error importing record: %v\n", err)
			errors++
			continue
		}

		imported++
		if imported%1000 == 0 {
			fmt.Printf("Imported %d %s records...\n", imported, label)
		}
	}

	fmt.Printf("Completed %s import: %d imported, %d errors\n", label, imported, errors)
	return nil
}

// ImportRegistry loads the INE municipality dictionary.
// Columns: CODAUTO,CPRO,CMUN,DC,NOMBRE.
func (im *Importer) ImportRegistry(filename string) error {
	stmt, err := im.db.Prepare(`
		INSERT INTO ine_municipality (
			autonomous_community_code, province_code, municipality_code, check_digit, municipality_name
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (province_code, municipality_code) DO UPDATE SET
			autonomous_community_code = EXCLUDED.autonomous_community_code,
			check_digit = EXCLUDED.check_digit,
			municipality_name = EXCLUDED.municipality_name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare registry insert: %w", err)
	}
	defer stmt.Close()

	return im.importFile(filename, "registry", func(record []string, idx map[string]int) error {
		codauto, err := intField(record, idx, "codauto")
		if err != nil {
			return err
		}
		cpro, err := intField(record, idx, "cpro")
		if err != nil {
			return err
		}
		cmun, err := intField(record, idx, "cmun")
		if err != nil {
			return err
		}
		dc, err := intField(record, idx, "dc")
		if err != nil {
			return err
		}
		name := field(record, idx, "nombre")
		if name == "" {
			return fmt.Errorf("empty municipality name for %d/%d", cpro, cmun)
		}

		// Store the combined national code, the form SEPE files carry.
		_, err = stmt.Exec(codauto, cpro, cpro*1000+cmun, dc, name)
		return err
	})
}

// ImportProvinces loads the province / autonomous community mapping.
// Columns: CPRO,PROVINCIA,CODAUTO,CCAA.
func (im *Importer) ImportProvinces(filename string) error {
	stmt, err := im.db.Prepare(`
		INSERT INTO ine_province (
			province_code, province_name, autonomous_community_code, autonomous_community_name
		) VALUES ($1, $2, $3, $4)
		ON CONFLICT (province_code) DO UPDATE SET
			province_name = EXCLUDED.province_name,
			autonomous_community_code = EXCLUDED.autonomous_community_code,
			autonomous_community_name = EXCLUDED.autonomous_community_name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare province insert: %w", err)
	}
	defer stmt.Close()

	return im.importFile(filename, "province", func(record []string, idx map[string]int) error {
		cpro, err := intField(record, idx, "cpro")
		if err != nil {
			return err
		}
		codauto, err := intField(record, idx, "codauto")
		if err != nil {
			return err
		}
		name := field(record, idx, "provincia")
		if name == "" {
			return fmt.Errorf("empty province name for code %d", cpro)
		}

		_, err = stmt.Exec(cpro, name, codauto, field(record, idx, "ccaa"))
		return err
	})
}

// ImportSEPE loads cleaned SEPE municipality rows. The municipality
// code is frequently absent in the source; empty and 0 both land as
// NULL so the resolver sees one "missing" state.
// Columns: municipality_code,municipality_name,province,year,month,data_type,total_value.
func (im *Importer) ImportSEPE(filename string) error {
	stmt, err := im.db.Prepare(`
		INSERT INTO sepe_municipality_data (
			municipality_code, municipality_name, province, year, month, data_type, total_value
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare SEPE insert: %w", err)
	}
	defer stmt.Close()

	return im.importFile(filename, "SEPE", func(record []string, idx map[string]int) error {
		name := field(record, idx, "municipality_name")
		province := field(record, idx, "province")
		if name == "" || province == "" {
			return fmt.Errorf("row missing municipality_name or province")
		}

		codeVal, err := intField(record, idx, "municipality_code")
		if err != nil {
			return err
		}
		code := sql.NullInt64{Int64: int64(codeVal), Valid: codeVal != 0}

		year, err := intField(record, idx, "year")
		if err != nil {
			return err
		}
		month, err := intField(record, idx, "month")
		if err != nil {
			return err
		}

		var total sql.NullFloat64
		if s := field(record, idx, "total_value"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("column total_value: %w", err)
			}
			total = sql.NullFloat64{Float64: v, Valid: true}
		}

		_, err = stmt.Exec(code, name, province, year, month, field(record, idx, "data_type"), total)
		return err
	})
}
