package export

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"employee-manager/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXML  Format = "xml"
)

// Keep header order EXACT, the importer reads files written with it.
var employeeHeader = []string{
	"ID",
	"FIRST_NAME",
	"LAST_NAME",
	"EMAIL",
	"JOB_TITLE",
	"PHONE",
	"EMPLOYEE_CODE",
	"IMAGE_URL",
}

// DefaultSheet is the worksheet name used by WriteFile for xlsx.
const DefaultSheet = "Employees"

// ParseFormat accepts csv, xlsx or xml in any case, with or without a dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatCSV, FormatXLSX, FormatXML:
		return f, nil
	}
	return "", fmt.Errorf("export: unknown format %q (want csv, xlsx or xml)", s)
}

// WriteFile renders employees in format and writes them to path.
// Nothing is written when rendering fails.
func WriteFile(path string, format Format, employees []domain.Employee) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = WriteEmployeeCSV(&buf, employees)
	case FormatXLSX:
		err = WriteEmployeeXLSX(&buf, DefaultSheet, employees)
	case FormatXML:
		err = WriteEmployeeXML(&buf, employees)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", format, err)
	}
	return nil
}

func toRow(e domain.Employee) []string {
	return []string{
		strconv.FormatInt(e.ID, 10), // ID
		clean(e.FirstName),          // FIRST_NAME
		clean(e.LastName),           // LAST_NAME
		clean(e.Email),              // EMAIL
		clean(e.JobTitle),           // JOB_TITLE
		clean(e.Phone),              // PHONE
		clean(e.EmployeeCode),       // EMPLOYEE_CODE
		clean(e.ImageURL),           // IMAGE_URL
	}
}

// clean trims and flattens newlines so each record stays on one line.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
