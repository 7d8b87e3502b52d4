package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"employee-manager/internal/concurrency"
	"employee-manager/internal/domain"
)

// fakeAPI is an in-memory server: its list reflects prior mutations.
type fakeAPI struct {
	mu     sync.Mutex
	store  []domain.Employee
	nextID int64

	listErr   error
	createErr func(in domain.EmployeeInput) error
	updateErr error
	deleteErr error

	listCalls int
}

func newFakeAPI(seed ...domain.Employee) *fakeAPI {
	f := &fakeAPI{nextID: 1}
	for _, e := range seed {
		f.store = append(f.store, e)
		if e.ID >= f.nextID {
			f.nextID = e.ID + 1
		}
	}
	return f
}

func (f *fakeAPI) ListAll(ctx context.Context) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return slices.Clone(f.store), nil
}

func (f *fakeAPI) Create(ctx context.Context, in domain.EmployeeInput) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		if err := f.createErr(in); err != nil {
			return domain.Employee{}, err
		}
	}
	e := domain.Employee{ID: f.nextID, EmployeeInput: in}
	f.nextID++
	f.store = append(f.store, e)
	return e, nil
}

func (f *fakeAPI) Update(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.Employee{}, f.updateErr
	}
	for i := range f.store {
		if f.store[i].ID == e.ID {
			f.store[i] = e
			return e, nil
		}
	}
	return domain.Employee{}, fmt.Errorf("employee %d not found", e.ID)
}

func (f *fakeAPI) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.store {
		if f.store[i].ID == id {
			f.store = slices.Delete(f.store, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("employee %d not found", id)
}

type modal struct {
	mode Mode
	e    *domain.Employee
}

type recorder struct {
	mu     sync.Mutex
	errors []string
	modals []modal
}

func (r *recorder) ReportError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recorder) OpenModal(mode Mode, e *domain.Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modals = append(r.modals, modal{mode: mode, e: e})
}

func emp(id int64, first, last, email string) domain.Employee {
	return domain.Employee{ID: id, EmployeeInput: domain.EmployeeInput{FirstName: first, LastName: last, Email: email}}
}

var (
	ann = emp(1, "Ann", "Lee", "a@x.com")
	bob = emp(2, "Bob", "Ray", "b@x.com")
)

func newLoaded(t *testing.T, api *fakeAPI) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	c := New(api, rec, rec)
	require.NoError(t, c.Initialize(context.Background()))
	return c, rec
}

func ids(list []domain.Employee) []int64 {
	out := make([]int64, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestInitializeLoadsCollectionInServerOrder(t *testing.T) {
	c, rec := newLoaded(t, newFakeAPI(bob, ann))

	require.Equal(t, []int64{2, 1}, ids(c.Employees()))
	require.Equal(t, []int64{2, 1}, ids(c.View()))
	require.Empty(t, rec.errors)
}

func TestFilterScenario(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob))

	require.Equal(t, []int64{1}, ids(c.Filter("an")))
	require.Equal(t, []int64{1}, ids(c.View()))

	require.Equal(t, []int64{1, 2}, ids(c.Filter("")))
	require.Equal(t, []int64{1, 2}, ids(c.Filter("zzz")))
	require.Equal(t, []int64{1, 2}, ids(c.View()))
}

func TestFilterSearchesCanonicalCollectionNotView(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob, emp(3, "Anna", "Bay", "anna@y.org")))

	require.Equal(t, []int64{1, 3}, ids(c.Filter("an")))
	require.Equal(t, []int64{3}, ids(c.Filter("anna")))
	// Bob was hidden by the previous term but is still found
	require.Equal(t, []int64{2}, ids(c.Filter("ray")))
	require.Equal(t, []int64{2, 3}, ids(c.Filter("b")))
}

func TestFilterMatchesEachFieldCaseInsensitively(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob))

	testCases := []struct {
		term     string
		expected []int64
	}{
		{"ANN", []int64{1}},
		{"lEe", []int64{1}},
		{"B@X.COM", []int64{2}},
		{"x.com", []int64{1, 2}},
		{"Ra", []int64{2}},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, ids(c.Filter(tc.term)), "Filter(%q)", tc.term)
	}
}

func TestFilterIsOrderPreservingSubsequence(t *testing.T) {
	seed := []domain.Employee{
		emp(9, "Zed", "Cole", "z@x.com"),
		emp(4, "Cora", "Bell", "c@x.com"),
		emp(7, "Al", "Cox", "al@y.com"),
		emp(5, "Nick", "Moss", "n@x.com"),
	}
	c, _ := newLoaded(t, newFakeAPI(seed...))

	for _, term := range []string{"co", "x.com", "o", "zz", ""} {
		got := c.Filter(term)
		pos := -1
		for _, e := range got {
			i := indexOf(seed, e.ID)
			require.Greater(t, i, pos, "order broken for %q", term)
			pos = i
			if len(got) != len(seed) {
				require.True(t, e.Matches(term))
			}
		}
	}
}

func TestFilterResultIsACopy(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob))

	got := c.Filter("")
	got[0].FirstName = "Mallory"
	require.Equal(t, "Ann", c.Employees()[0].FirstName)
}

func TestRefreshFailureKeepsPreviousCollection(t *testing.T) {
	api := newFakeAPI(ann, bob)
	c, rec := newLoaded(t, api)
	before := c.Employees()

	api.listErr = errors.New("connection refused")
	err := c.Refresh(context.Background())

	require.Error(t, err)
	require.Equal(t, before, c.Employees())
	require.Equal(t, []string{"connection refused"}, rec.errors)
}

func TestRefreshResetsFilter(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob))

	c.Filter("bob")
	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, []int64{1, 2}, ids(c.View()))
}

func TestSubmitCreateRefreshesWithServerRecord(t *testing.T) {
	api := newFakeAPI(ann, bob)
	c, rec := newLoaded(t, api)

	form := &StaticForm{In: domain.EmployeeInput{FirstName: "Cy", LastName: "Ng", Email: "c@x.com"}}
	require.NoError(t, c.SubmitCreate(context.Background(), form))

	require.Equal(t, domain.EmployeeInput{}, form.In, "form must be reset")
	require.Equal(t, []int64{1, 2, 3}, ids(c.Employees()))
	require.Equal(t, "Cy", c.Employees()[2].FirstName)
	require.Equal(t, 2, api.listCalls)
	require.Empty(t, rec.errors)
}

func TestSubmitCreateFailure(t *testing.T) {
	api := newFakeAPI(ann, bob)
	api.createErr = func(domain.EmployeeInput) error { return errors.New("http error: POST status=400") }
	c, rec := newLoaded(t, api)
	before := c.Employees()

	form := &StaticForm{In: domain.EmployeeInput{FirstName: "Cy"}}
	err := c.SubmitCreate(context.Background(), form)

	require.Error(t, err)
	require.Equal(t, domain.EmployeeInput{}, form.In, "form is reset on failure too")
	require.Equal(t, before, c.Employees())
	require.Equal(t, []string{"http error: POST status=400"}, rec.errors)
	require.Equal(t, 1, api.listCalls, "no refresh after a failed create")
}

func TestSubmitUpdateOnlyChangesTarget(t *testing.T) {
	api := newFakeAPI(ann, bob)
	c, _ := newLoaded(t, api)

	require.NoError(t, c.SelectForEdit(bob))
	target, ok := c.EditTarget()
	require.True(t, ok)

	target.JobTitle = "Manager"
	require.NoError(t, c.SubmitUpdate(context.Background(), target))

	after := c.Employees()
	require.Equal(t, ann, after[0])
	require.Equal(t, "Manager", after[1].JobTitle)
}

func TestSubmitUpdateFailure(t *testing.T) {
	api := newFakeAPI(ann, bob)
	api.updateErr = errors.New("rejected")
	c, rec := newLoaded(t, api)
	before := c.Employees()

	err := c.SubmitUpdate(context.Background(), emp(2, "Robert", "Ray", "b@x.com"))

	require.Error(t, err)
	require.Equal(t, before, c.Employees())
	require.Equal(t, []string{"rejected"}, rec.errors)
}

func TestSubmitDeleteScenario(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob))

	require.NoError(t, c.SelectForDelete(bob))
	require.NoError(t, c.SubmitDelete(context.Background(), 2))

	require.Equal(t, []int64{1}, ids(c.Employees()))
	require.Equal(t, []int64{1}, ids(c.View()))

	_, ok := c.DeleteTarget()
	require.False(t, ok, "target must not resolve once the record is gone")
}

func TestSubmitDeleteFailure(t *testing.T) {
	c, rec := newLoaded(t, newFakeAPI(ann, bob))
	before := c.Employees()

	err := c.SubmitDelete(context.Background(), 42)

	require.Error(t, err)
	require.Equal(t, before, c.Employees())
	require.Len(t, rec.errors, 1)
	require.Contains(t, rec.errors[0], "42")
}

func TestSelectOpensModalWithoutNetwork(t *testing.T) {
	api := newFakeAPI(ann, bob)
	c, rec := newLoaded(t, api)

	require.NoError(t, c.SelectForEdit(ann))
	require.NoError(t, c.SelectForDelete(bob))
	c.OpenCreate()

	require.Equal(t, 1, api.listCalls)
	require.Len(t, rec.modals, 3)
	require.Equal(t, ModeEdit, rec.modals[0].mode)
	require.Equal(t, int64(1), rec.modals[0].e.ID)
	require.Equal(t, ModeDelete, rec.modals[1].mode)
	require.Equal(t, int64(2), rec.modals[1].e.ID)
	require.Equal(t, ModeAdd, rec.modals[2].mode)
	require.Nil(t, rec.modals[2].e)

	e, ok := c.EditTarget()
	require.True(t, ok)
	require.Equal(t, ann, e)
	d, ok := c.DeleteTarget()
	require.True(t, ok)
	require.Equal(t, bob, d)
}

func TestSelectSupersedesPreviousTarget(t *testing.T) {
	c, _ := newLoaded(t, newFakeAPI(ann, bob))

	require.NoError(t, c.SelectForEdit(ann))
	require.NoError(t, c.SelectForEdit(bob))

	e, ok := c.EditTarget()
	require.True(t, ok)
	require.Equal(t, int64(2), e.ID)
}

func TestSelectUnknownRecord(t *testing.T) {
	c, rec := newLoaded(t, newFakeAPI(ann))

	err := c.SelectForDelete(bob)
	require.ErrorIs(t, err, ErrNotInRoster)
	require.Empty(t, rec.modals)

	_, ok := c.DeleteTarget()
	require.False(t, ok)
}

func TestEditTargetFollowsRefresh(t *testing.T) {
	api := newFakeAPI(ann, bob)
	c, _ := newLoaded(t, api)
	require.NoError(t, c.SelectForEdit(ann))

	// another client renames Ann on the server
	api.store[0].FirstName = "Annie"
	require.NoError(t, c.Refresh(context.Background()))

	e, ok := c.EditTarget()
	require.True(t, ok)
	require.Equal(t, "Annie", e.FirstName)
}

// blockingAPI lets a test decide when each ListAll returns.
type blockingAPI struct {
	*fakeAPI
	gates chan chan []domain.Employee
}

func (b *blockingAPI) ListAll(ctx context.Context) ([]domain.Employee, error) {
	gate := make(chan []domain.Employee)
	b.gates <- gate
	return <-gate, nil
}

func TestOverlappingRefreshesLastCompletingWins(t *testing.T) {
	api := &blockingAPI{fakeAPI: newFakeAPI(), gates: make(chan chan []domain.Employee)}
	c := New(api, nil, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.Refresh(context.Background()) }()
	first := <-api.gates
	go func() { defer wg.Done(); c.Refresh(context.Background()) }()
	second := <-api.gates

	second <- []domain.Employee{ann, bob}
	require.Eventually(t, func() bool { return len(c.Employees()) == 2 }, time.Second, time.Millisecond)

	first <- []domain.Employee{bob}
	wg.Wait()

	require.Equal(t, []int64{2}, ids(c.Employees()))
}

func TestSubmitBatchCreate(t *testing.T) {
	api := newFakeAPI(ann)
	api.createErr = func(in domain.EmployeeInput) error {
		if in.Email == "" {
			return errors.New("email is required")
		}
		return nil
	}
	c, rec := newLoaded(t, api)

	inputs := []domain.EmployeeInput{
		{FirstName: "Cy", Email: "c@x.com"},
		{FirstName: "Dee"},
		{FirstName: "Eve", Email: "e@x.com"},
	}
	res := c.SubmitBatchCreate(context.Background(), inputs, concurrency.ParallelOptions{MaxWorkers: 2})

	require.Len(t, res.Created, 2)
	require.Len(t, res.Errors, 1)
	require.NoError(t, res.RefreshErr)
	require.Equal(t, []string{"Dee: email is required"}, rec.errors)
	require.Len(t, c.Employees(), 3)
	require.Equal(t, 2, api.listCalls, "exactly one refresh after the batch")
}

func TestSubmitBatchCreateAllFailSkipsRefresh(t *testing.T) {
	api := newFakeAPI(ann)
	api.createErr = func(domain.EmployeeInput) error { return errors.New("down") }
	c, rec := newLoaded(t, api)

	res := c.SubmitBatchCreate(context.Background(), []domain.EmployeeInput{{Email: "x@x.com"}, {Email: "y@x.com"}}, concurrency.DefaultOptions())

	require.Empty(t, res.Created)
	require.Len(t, rec.errors, 2)
	require.Equal(t, 1, api.listCalls)
}
