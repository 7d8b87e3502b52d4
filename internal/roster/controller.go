package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"employee-manager/internal/concurrency"
	"employee-manager/internal/domain"
	"employee-manager/internal/logger"
)

// ErrNotInRoster is returned when a record selected for edit or delete is not
// part of the current collection.
var ErrNotInRoster = errors.New("roster: employee is not in the current list")

// Mode names the confirmation surface the presenter should open.
type Mode string

const (
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

// API is the subset of the employee API the controller drives.
type API interface {
	ListAll(ctx context.Context) ([]domain.Employee, error)
	Create(ctx context.Context, in domain.EmployeeInput) (domain.Employee, error)
	Update(ctx context.Context, e domain.Employee) (domain.Employee, error)
	Delete(ctx context.Context, id int64) error
}

// Presenter surfaces the add/edit/delete dialogs. e is nil for ModeAdd.
type Presenter interface {
	OpenModal(mode Mode, e *domain.Employee)
}

// ErrorReporter shows one human-readable message per failed operation.
type ErrorReporter interface {
	ReportError(message string)
}

// Form is the pending input of the add dialog.
type Form interface {
	Input() domain.EmployeeInput
	Reset()
}

type target struct {
	id  int64
	set bool
}

// Controller owns the canonical employee collection and the filtered view
// derived from it. Every mutation goes through the API and is followed by a
// full reload; records are never patched locally.
//
// API calls run without holding the lock. When two refreshes overlap, the
// one that completes last wins.
type Controller struct {
	api       API
	presenter Presenter
	errs      ErrorReporter

	mu        sync.RWMutex
	employees []domain.Employee
	view      []domain.Employee
	edit      target
	del       target
}

func New(api API, presenter Presenter, errs ErrorReporter) *Controller {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	if errs == nil {
		errs = nopReporter{}
	}
	return &Controller{
		api:       api,
		presenter: presenter,
		errs:      errs,
		employees: []domain.Employee{},
		view:      []domain.Employee{},
	}
}

// Initialize loads the collection on startup.
func (c *Controller) Initialize(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh replaces the collection with the server's. On failure the previous
// collection stays in place.
func (c *Controller) Refresh(ctx context.Context) error {
	list, err := c.api.ListAll(ctx)
	if err != nil {
		return c.fail(ctx, "refresh", err)
	}
	if list == nil {
		list = []domain.Employee{}
	}

	c.mu.Lock()
	c.employees = list
	c.view = list
	c.mu.Unlock()

	logger.DebugLog(ctx, "roster: loaded %d employees", len(list))
	return nil
}

// SubmitCreate posts the form's input. The form is reset whatever the outcome.
func (c *Controller) SubmitCreate(ctx context.Context, form Form) error {
	created, err := c.api.Create(ctx, form.Input())
	form.Reset()
	if err != nil {
		return c.fail(ctx, "add", err)
	}
	logger.InfoLog(ctx, "roster: created employee %d", created.ID)
	return c.Refresh(ctx)
}

// SubmitUpdate sends e, normally the edited copy of EditTarget.
func (c *Controller) SubmitUpdate(ctx context.Context, e domain.Employee) error {
	if _, err := c.api.Update(ctx, e); err != nil {
		return c.fail(ctx, "update", err)
	}
	logger.InfoLog(ctx, "roster: updated employee %d", e.ID)
	return c.Refresh(ctx)
}

func (c *Controller) SubmitDelete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return c.fail(ctx, "delete", err)
	}
	logger.InfoLog(ctx, "roster: deleted employee %d", id)
	return c.Refresh(ctx)
}

// OpenCreate asks the presenter for the add dialog.
func (c *Controller) OpenCreate() {
	c.presenter.OpenModal(ModeAdd, nil)
}

func (c *Controller) SelectForEdit(e domain.Employee) error {
	return c.selectTarget(ModeEdit, e)
}

func (c *Controller) SelectForDelete(e domain.Employee) error {
	return c.selectTarget(ModeDelete, e)
}

func (c *Controller) selectTarget(mode Mode, e domain.Employee) error {
	c.mu.Lock()
	i := indexOf(c.employees, e.ID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: id %d", ErrNotInRoster, e.ID)
	}
	current := c.employees[i]
	if mode == ModeEdit {
		c.edit = target{id: e.ID, set: true}
	} else {
		c.del = target{id: e.ID, set: true}
	}
	c.mu.Unlock()

	c.presenter.OpenModal(mode, &current)
	return nil
}

// EditTarget resolves the edit selection against the current collection. It
// reports false when nothing is selected or the record is gone after a reload.
func (c *Controller) EditTarget() (domain.Employee, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolve(c.edit)
}

func (c *Controller) DeleteTarget() (domain.Employee, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolve(c.del)
}

func (c *Controller) resolve(t target) (domain.Employee, bool) {
	if !t.set {
		return domain.Employee{}, false
	}
	i := indexOf(c.employees, t.id)
	if i < 0 {
		return domain.Employee{}, false
	}
	return c.employees[i], true
}

// Filter narrows the view to the records whose first name, last name or
// email contains term, ignoring case. It always searches the full collection,
// so editing the term can widen the result again.
//
// An empty term, or a term nothing matches, shows the full collection.
func (c *Controller) Filter(term string) []domain.Employee {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view = c.employees
	if term != "" {
		var matches []domain.Employee
		for _, e := range c.employees {
			if e.Matches(term) {
				matches = append(matches, e)
			}
		}
		if len(matches) > 0 {
			c.view = matches
		}
	}
	return slices.Clone(c.view)
}

// Employees returns a copy of the canonical collection.
func (c *Controller) Employees() []domain.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.employees)
}

// View returns a copy of what is currently displayed.
func (c *Controller) View() []domain.Employee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.view)
}

// BatchResult summarizes SubmitBatchCreate.
type BatchResult struct {
	Created []domain.Employee
	Errors  []error
	// RefreshErr is set when the closing reload failed.
	RefreshErr error
}

// SubmitBatchCreate creates inputs concurrently and reloads once at the end
// when at least one create succeeded. Each failed create is reported once.
func (c *Controller) SubmitBatchCreate(ctx context.Context, inputs []domain.EmployeeInput, opts concurrency.ParallelOptions) BatchResult {
	var res BatchResult
	if len(inputs) == 0 {
		return res
	}

	created, errs := concurrency.ProcessParallel(ctx, inputs, opts, func(ctx context.Context, _ int, in domain.EmployeeInput) (domain.Employee, error) {
		return c.api.Create(ctx, in)
	})
	for i, err := range errs {
		if err != nil {
			res.Errors = append(res.Errors, c.fail(ctx, "add", fmt.Errorf("%s: %w", describe(inputs[i]), err)))
			continue
		}
		res.Created = append(res.Created, created[i])
	}
	logger.InfoLog(ctx, "roster: batch created %d of %d employees, %d failed", len(res.Created), len(inputs), concurrency.CountErrors(errs))

	if len(res.Created) > 0 {
		res.RefreshErr = c.Refresh(ctx)
	}
	return res
}

func (c *Controller) fail(ctx context.Context, op string, err error) error {
	logger.ErrorLog(ctx, "roster: "+op+" failed", err)
	c.errs.ReportError(err.Error())
	return err
}

func describe(in domain.EmployeeInput) string {
	if in.Email != "" {
		return in.Email
	}
	return in.FullName()
}

func indexOf(list []domain.Employee, id int64) int {
	return slices.IndexFunc(list, func(e domain.Employee) bool { return e.ID == id })
}

type nopPresenter struct{}

func (nopPresenter) OpenModal(Mode, *domain.Employee) {}

type nopReporter struct{}

func (nopReporter) ReportError(string) {}
