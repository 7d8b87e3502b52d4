package export

import (
	"encoding/csv"
	"io"

	"employee-manager/internal/domain"
)

// WriteEmployeeCSV writes one row per employee, in the given order.
func WriteEmployeeCSV(w io.Writer, employees []domain.Employee) error {
	cw := csv.NewWriter(w)
	// match typical spreadsheet exports
	cw.UseCRLF = true

	if err := cw.Write(employeeHeader); err != nil {
		return err
	}
	for _, e := range employees {
		if err := cw.Write(toRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
