package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
)

// Handler serves the resolution API endpoints.
type Handler struct {
	DB *sql.DB
}

// StatsResponse represents overall resolution statistics
type StatsResponse struct {
	TotalKeys      int            `json:"total_keys"`
	ResolvedKeys   int            `json:"resolved_keys"`
	UnresolvedKeys int            `json:"unresolved_keys"`
	ResolutionRate float64        `json:"resolution_rate"`
	ByMethod       map[string]int `json:"by_method"`
	LatestRunID    int64          `json:"latest_run_id"`
}

// MatchResponse is one resolved key as returned by the API.
type MatchResponse struct {
	RawName          string `json:"raw_name"`
	RawProvince      string `json:"raw_province"`
	MunicipalityCode *int   `json:"municipality_code"`
	Method           string `json:"method"`
	Confidence       int    `json:"confidence"`
}

// GetStats returns overall resolution statistics
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	var stats StatsResponse

	err := h.DB.QueryRow(`
		SELECT
			COUNT(*) as total,
			COUNT(municipality_code) as resolved,
			COUNT(*) - COUNT(municipality_code) as unresolved
		FROM municipality_code_match
	`).Scan(&stats.TotalKeys, &stats.ResolvedKeys, &stats.UnresolvedKeys)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if stats.TotalKeys > 0 {
		stats.ResolutionRate = float64(stats.ResolvedKeys) / float64(stats.TotalKeys) * 100
	}

	stats.ByMethod = make(map[string]int)
	rows, err := h.DB.Query(`
		SELECT method, COUNT(*)
		FROM municipality_code_match
		GROUP BY method
	`)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var count int
		if err := rows.Scan(&method, &count); err != nil {
			continue
		}
		stats.ByMethod[method] = count
	}

	// Latest run is informational; ignore lookup failure.
	_ = h.DB.QueryRow(`SELECT COALESCE(MAX(run_id), 0) FROM resolution_run`).Scan(&stats.LatestRunID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// ListMatches returns resolved keys, filterable by method and minimum
// confidence, paged by limit/offset.
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 100)
	if limit > 1000 {
		limit = 1000
	}
	offset := parseIntParam(r.URL.Query().Get("offset"), 0)
	minConfidence := parseIntParam(r.URL.Query().Get("min_confidence"), 0)
	method := r.URL.Query().Get("method")

	query := `
		SELECT raw_name, raw_province, municipality_code, method, confidence
		FROM municipality_code_match
		WHERE municipality_code IS NOT NULL
			AND confidence >= $1
			AND ($2 = '' OR method = $2)
		ORDER BY raw_name, raw_province
		LIMIT $3 OFFSET $4
	`
	rows, err := h.DB.Query(query, minConfidence, method, limit, offset)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	matches := []MatchResponse{}
	for rows.Next() {
		var m MatchResponse
		var code sql.NullInt64
		if err := rows.Scan(&m.RawName, &m.RawProvince, &code, &m.Method, &m.Confidence); err != nil {
			continue
		}
		if code.Valid {
			v := int(code.Int64)
			m.MunicipalityCode = &v
		}
		matches = append(matches, m)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

// ListUnresolved returns the keys no method could resolve, the review
// backlog for alias table additions.
func (h *Handler) ListUnresolved(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r.URL.Query().Get("limit"), 100)
	if limit > 1000 {
		limit = 1000
	}
	offset := parseIntParam(r.URL.Query().Get("offset"), 0)

	rows, err := h.DB.Query(`
		SELECT raw_name, raw_province, method, confidence
		FROM municipality_code_match
		WHERE municipality_code IS NULL
		ORDER BY raw_name, raw_province
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	matches := []MatchResponse{}
	for rows.Next() {
		var m MatchResponse
		if err := rows.Scan(&m.RawName, &m.RawProvince, &m.Method, &m.Confidence); err != nil {
			continue
		}
		matches = append(matches, m)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(matches)
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Ping(); err != nil {
		http.Error(w, "database unreachable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// parseIntParam parses a query parameter as int with a default value
func parseIntParam(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return defaultVal
}
