package tui

import (
	"fmt"
	"strings"

	"employee-manager/internal/domain"
)

type field struct {
	label string
	value string
}

var formLabels = []string{"First name", "Last name", "Email", "Job title", "Phone", "Image URL"}

// Form is the add/edit dialog. *Form satisfies roster.Form.
type Form struct {
	fields []field
	focus  int
}

func NewForm() Form {
	f := Form{fields: make([]field, len(formLabels))}
	for i, l := range formLabels {
		f.fields[i].label = l
	}
	return f
}

func (f *Form) Input() domain.EmployeeInput {
	v := func(i int) string { return strings.TrimSpace(f.fields[i].value) }
	return domain.EmployeeInput{
		FirstName: v(0),
		LastName:  v(1),
		Email:     v(2),
		JobTitle:  v(3),
		Phone:     v(4),
		ImageURL:  v(5),
	}
}

func (f *Form) Reset() {
	for i := range f.fields {
		f.fields[i].value = ""
	}
	f.focus = 0
}

// Load fills the form with e for editing.
func (f *Form) Load(e domain.Employee) {
	f.Reset()
	for i, v := range []string{e.FirstName, e.LastName, e.Email, e.JobTitle, e.Phone, e.ImageURL} {
		f.fields[i].value = v
	}
}

func (f *Form) Type(r []rune) {
	f.fields[f.focus].value += string(r)
}

func (f *Form) Backspace() {
	v := []rune(f.fields[f.focus].value)
	if len(v) > 0 {
		f.fields[f.focus].value = string(v[:len(v)-1])
	}
}

func (f *Form) Next() { f.focus = (f.focus + 1) % len(f.fields) }

func (f *Form) Prev() { f.focus = (f.focus + len(f.fields) - 1) % len(f.fields) }

func (f Form) View() string {
	var b strings.Builder
	for i, fl := range f.fields {
		cursor := "  "
		if i == f.focus {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%-11s %s\n", cursor, fl.label+":", fl.value)
	}
	return b.String()
}

// merge applies the form input to the current record, keeping the fields
// the form does not show.
func merge(cur domain.EmployeeInput, in domain.EmployeeInput) domain.EmployeeInput {
	cur.FirstName = in.FirstName
	cur.LastName = in.LastName
	cur.Email = in.Email
	cur.JobTitle = in.JobTitle
	cur.Phone = in.Phone
	cur.ImageURL = in.ImageURL
	return cur
}
