package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"employee-manager/internal/domain"
)

// ErrNoHeader is returned for an empty input.
var ErrNoHeader = errors.New("importer: missing header row")

// column setters, keyed by the normalized header name.
var columns = map[string]func(in *domain.EmployeeInput, v string){
	"firstname":    func(in *domain.EmployeeInput, v string) { in.FirstName = v },
	"lastname":     func(in *domain.EmployeeInput, v string) { in.LastName = v },
	"email":        func(in *domain.EmployeeInput, v string) { in.Email = v },
	"jobtitle":     func(in *domain.EmployeeInput, v string) { in.JobTitle = v },
	"phone":        func(in *domain.EmployeeInput, v string) { in.Phone = v },
	"imageurl":     func(in *domain.EmployeeInput, v string) { in.ImageURL = v },
	"employeecode": func(in *domain.EmployeeInput, v string) { in.EmployeeCode = v },
}

// Row is one CSV record and the line of the file it starts on.
type Row struct {
	Line  int
	Input domain.EmployeeInput
}

// ReadCSV reads employee rows from a header-driven CSV. FIRST_NAME,
// first_name and firstName all map to the same field. An ID column is
// ignored since ids are assigned by the server. Other unknown columns end up
// in Extra.
func ReadCSV(r io.Reader) ([]domain.EmployeeInput, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return Inputs(rows), nil
}

// ReadRows is ReadCSV keeping the line number of every record. Blank records
// are dropped but still count as lines.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("importer: read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var out []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("importer: line %d: %w", perr.StartLine, err)
			}
			return nil, fmt.Errorf("importer: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		out = append(out, Row{Line: line, Input: toInput(header, rec)})
	}
	return out, nil
}

// Inputs drops the line numbers.
func Inputs(rows []Row) []domain.EmployeeInput {
	var out []domain.EmployeeInput
	for _, r := range rows {
		out = append(out, r.Input)
	}
	return out
}

func toInput(header, rec []string) domain.EmployeeInput {
	var in domain.EmployeeInput
	for i, name := range header {
		if i >= len(rec) {
			break
		}
		v := strings.TrimSpace(rec[i])
		key := normalizeHeader(name)
		if key == "id" {
			continue
		}
		if set, ok := columns[key]; ok {
			set(&in, v)
			continue
		}
		if v == "" || strings.TrimSpace(name) == "" {
			continue
		}
		if in.Extra == nil {
			in.Extra = map[string]any{}
		}
		in.Extra[strings.TrimSpace(name)] = v
	}
	return in
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
