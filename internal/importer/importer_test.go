package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"employee-manager/internal/domain"
)

func TestReadCSVHeaderVariants(t *testing.T) {
	testCases := []struct {
		name   string
		header string
	}{
		{"export columns", "ID,FIRST_NAME,LAST_NAME,EMAIL,JOB_TITLE,PHONE,EMPLOYEE_CODE,IMAGE_URL"},
		{"json keys", "id,firstName,lastName,email,jobTitle,phone,employeeCode,imageUrl"},
		{"snake case", "id,first_name,last_name,email,job_title,phone,employee_code,image_url"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.header + "\n7,Ann,Lee,a@x.com,Dev,555,E-1,http://img/a.png\n"
			rows, err := ReadCSV(strings.NewReader(in))
			require.NoError(t, err)
			require.Equal(t, []domain.EmployeeInput{{
				FirstName:    "Ann",
				LastName:     "Lee",
				Email:        "a@x.com",
				JobTitle:     "Dev",
				Phone:        "555",
				EmployeeCode: "E-1",
				ImageURL:     "http://img/a.png",
			}}, rows)
		})
	}
}

func TestReadCSVExtraColumnsAndBlankRows(t *testing.T) {
	in := "\ufeffFirst Name,Email,Department\r\n" +
		"Ann, a@x.com ,Sales\r\n" +
		",,\r\n" +
		"Bob,b@x.com\r\n"

	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "Ann", rows[0].FirstName)
	require.Equal(t, "a@x.com", rows[0].Email)
	require.Equal(t, map[string]any{"Department": "Sales"}, rows[0].Extra)

	require.Equal(t, "Bob", rows[1].FirstName)
	require.Nil(t, rows[1].Extra)
}

func TestReadRowsLineNumbers(t *testing.T) {
	in := "firstName,email,notes\n" +
		"Ann,a@x.com,\"two\nlines\"\n" +
		"\n" +
		",,\n" +
		"Bob,b@x.com,\n"

	rows, err := ReadRows(strings.NewReader(in))
	require.NoError(t, err)

	testCases := []struct {
		name string
		line int
	}{
		{"Ann", 2},
		{"Bob", 6},
	}
	require.Len(t, rows, len(testCases))
	for i, tc := range testCases {
		require.Equal(t, tc.name, rows[i].Input.FirstName)
		require.Equal(t, tc.line, rows[i].Line, "line of %s", tc.name)
	}
	require.Equal(t, "two\nlines", rows[0].Input.Extra["notes"])
	require.Equal(t, []domain.EmployeeInput{rows[0].Input, rows[1].Input}, Inputs(rows))
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoHeader)

	rows, err := ReadCSV(strings.NewReader("email\n"))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("email\n\"unterminated\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "importer: line 2")
}

func TestPlan(t *testing.T) {
	existing := []domain.Employee{
		{ID: 1, EmployeeInput: domain.EmployeeInput{FirstName: "Ann", Email: "A@X.com"}},
	}
	rows := []domain.EmployeeInput{
		{FirstName: "Ann again", Email: " a@x.COM"},
		{FirstName: "Bob", Email: "b@x.com"},
		{FirstName: "No email"},
		{FirstName: "Bobby", Email: "B@x.com"},
	}

	res := Plan(existing, rows)

	require.Equal(t, []domain.EmployeeInput{rows[1], rows[2]}, res.Create)
	require.Equal(t, []Skipped{
		{Row: 0, Input: rows[0], Reason: ReasonExists},
		{Row: 3, Input: rows[3], Reason: ReasonDuplicate},
	}, res.Skipped)
}
