package roster

import "employee-manager/internal/domain"

// StaticForm is a Form holding a fixed input, for callers without a dialog.
type StaticForm struct {
	In domain.EmployeeInput
}

func (f *StaticForm) Input() domain.EmployeeInput { return f.In }

func (f *StaticForm) Reset() { f.In = domain.EmployeeInput{} }
