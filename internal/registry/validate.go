package registry

import (
	"fmt"

	"github.com/muni-codes/internal/normalize"
)

// Issue is one validation finding. Severity is "error" for broken
// referential integrity and "warning" for suspicious but loadable data.
type Issue struct {
	Severity string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
}

// Validate checks the loaded reference set for internal consistency:
// INE autonomous community codes run 1-19 and province codes 1-52, and
// every municipality must belong to a known province. An empty result
// means the registry is clean.
func (r *Registry) Validate() []Issue {
	var issues []Issue

	provinceCodes := make(map[int]bool, len(r.provinces))
	for _, p := range r.provinces {
		provinceCodes[p.Code] = true

		if p.Code < 1 || p.Code > 52 {
			issues = append(issues, Issue{
				Severity: "error",
				Message:  fmt.Sprintf("province %q has code %d outside 1-52", p.Name, p.Code),
			})
		}
		if p.AutonomousCommunityCode < 1 || p.AutonomousCommunityCode > 19 {
			issues = append(issues, Issue{
				Severity: "error",
				Message:  fmt.Sprintf("province %q has autonomous community code %d outside 1-19", p.Name, p.AutonomousCommunityCode),
			})
		}
	}

	for provinceCode, entries := range r.byProvince {
		if !provinceCodes[provinceCode] {
			issues = append(issues, Issue{
				Severity: "error",
				Message:  fmt.Sprintf("%d municipalities reference unknown province code %d", len(entries), provinceCode),
			})
		}
		for _, e := range entries {
			if e.AutonomousCommunityCode < 1 || e.AutonomousCommunityCode > 19 {
				issues = append(issues, Issue{
					Severity: "error",
					Message:  fmt.Sprintf("municipality %q (%d/%d) has autonomous community code %d outside 1-19", e.Name, e.ProvinceCode, e.MunicipalityCode, e.AutonomousCommunityCode),
				})
			}
		}
	}

	// Alias targets must resolve, otherwise the alias silently never fires.
	for variant, canonical := range r.aliases {
		if _, ok := r.provinceByName[normalize.Name(canonical)]; !ok && len(r.provinces) > 0 {
			issues = append(issues, Issue{
				Severity: "warning",
				Message:  fmt.Sprintf("province alias %q points at unknown canonical name %q", variant, canonical),
			})
		}
	}

	return issues
}
