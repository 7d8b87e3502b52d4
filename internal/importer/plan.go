package importer

import "employee-manager/internal/domain"

// Skip reasons.
const (
	ReasonExists    = "email already present"
	ReasonDuplicate = "duplicate email in file"
)

// Skipped is a row that Plan decided not to create.
type Skipped struct {
	// Row is the zero-based index into the rows passed to Plan.
	Row    int
	Input  domain.EmployeeInput
	Reason string
}

type Result struct {
	Create  []domain.EmployeeInput
	Skipped []Skipped
}

// Plan compares rows with the employees already on the server.
// Emails are compared case-insensitively; rows without an email are always
// created.
func Plan(existing []domain.Employee, rows []domain.EmployeeInput) Result {
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		if k := e.NormalizedEmail(); k != "" {
			known[k] = true
		}
	}

	var res Result
	seen := map[string]bool{}
	for i, in := range rows {
		k := in.NormalizedEmail()
		switch {
		case k == "":
			res.Create = append(res.Create, in)
		case known[k]:
			res.Skipped = append(res.Skipped, Skipped{Row: i, Input: in, Reason: ReasonExists})
		case seen[k]:
			res.Skipped = append(res.Skipped, Skipped{Row: i, Input: in, Reason: ReasonDuplicate})
		default:
			seen[k] = true
			res.Create = append(res.Create, in)
		}
	}
	return res
}
