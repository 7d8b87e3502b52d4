package export

import (
	"encoding/xml"
	"fmt"
	"io"

	"employee-manager/internal/domain"
)

/*
<employees>
  <employee>
    <id>1</id>
    <firstName>Ann</firstName>
    <lastName>Lee</lastName>
    <email>a@x.com</email>
    ...
  </employee>
</employees>
*/

type xmlEmployeeList struct {
	XMLName   xml.Name      `xml:"employees"`
	Employees []xmlEmployee `xml:"employee"`
}

type xmlEmployee struct {
	ID           int64  `xml:"id"`
	FirstName    string `xml:"firstName"`
	LastName     string `xml:"lastName"`
	Email        string `xml:"email"`
	JobTitle     string `xml:"jobTitle,omitempty"`
	Phone        string `xml:"phone,omitempty"`
	EmployeeCode string `xml:"employeeCode,omitempty"`
	ImageURL     string `xml:"imageUrl,omitempty"`
}

// WriteEmployeeXML writes an indented <employees> document.
func WriteEmployeeXML(w io.Writer, employees []domain.Employee) error {
	out := xmlEmployeeList{Employees: make([]xmlEmployee, 0, len(employees))}
	for _, e := range employees {
		out.Employees = append(out.Employees, xmlEmployee{
			ID:           e.ID,
			FirstName:    clean(e.FirstName),
			LastName:     clean(e.LastName),
			Email:        clean(e.Email),
			JobTitle:     clean(e.JobTitle),
			Phone:        clean(e.Phone),
			EmployeeCode: clean(e.EmployeeCode),
			ImageURL:     clean(e.ImageURL),
		})
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal employee xml: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("export: write employee xml: %w", err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("export: write employee xml: %w", err)
	}
	return nil
}
