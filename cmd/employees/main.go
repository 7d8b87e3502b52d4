package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"employee-manager/internal/concurrency"
	"employee-manager/internal/config"
	"employee-manager/internal/devutil"
	"employee-manager/internal/domain"
	"employee-manager/internal/employeeapi"
	"employee-manager/internal/export"
	"employee-manager/internal/httpx"
	"employee-manager/internal/importer"
	"employee-manager/internal/logger"
	"employee-manager/internal/roster"
	"employee-manager/internal/sftpclient"
	"employee-manager/internal/tui"
)

// errReported marks errors the controller already showed to the user.
var errReported = errors.New("reported")

const usage = `usage: employees <command> [flags]

commands:
  list    [-search term]
  add     -first NAME -last NAME -email EMAIL [-job TITLE] [-phone PHONE] [-image URL]
  update  -id ID [-first NAME] [-last NAME] [-email EMAIL] [-job TITLE] [-phone PHONE] [-image URL]
  delete  -id ID
  show    -id ID [-fields key,key]
  export  -format csv|xlsx|xml -out PATH [-search term] [-sftp]
  import  -in PATH [-workers N] [-dry-run]
  tui
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := os.Args[1:]
	if len(args) > 0 && args[0] == "tui" {
		if cfg.LogFilePath != "" {
			initFileLogging(cfg)
		}
	} else {
		logger.InitLogging(cfg.LogLevel, cfg.LogFilePath)
	}

	if err := run(ctx, cfg, args, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "employees:", err)
		}
		os.Exit(1)
	}
}

// initFileLogging keeps the terminal clean while the TUI owns it.
func initFileLogging(cfg config.Config) {
	f, err := os.OpenFile(cfg.LogFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o664)
	if err != nil {
		return
	}
	logger.SetOutput(f, logger.ParseLevel(cfg.LogLevel))
}

type app struct {
	cfg    config.Config
	api    *employeeapi.Client
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	a := &app{
		cfg:    cfg,
		api:    employeeapi.New(cfg.APIBaseURL, cfg.APITimeout),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return a.list(ctx, rest)
	case "add":
		return a.add(ctx, rest)
	case "update":
		return a.update(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "show":
		return a.show(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	case "import":
		return a.importCSV(ctx, rest)
	case "tui":
		surface := tui.NewSurface()
		return tui.Run(ctx, roster.New(a.api, surface, surface), surface)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

// stderrReporter prints controller errors, one line each.
type stderrReporter struct {
	w io.Writer
}

func (r stderrReporter) ReportError(message string) {
	fmt.Fprintln(r.w, "error:", message)
}

// load builds a controller and fetches the current list.
func (a *app) load(ctx context.Context) (*roster.Controller, error) {
	ctl := roster.New(a.api, nil, stderrReporter{w: a.stderr})
	if err := ctl.Initialize(ctx); err != nil {
		return nil, reported(err)
	}
	return ctl, nil
}

func reported(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", errReported, err)
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// employeeFlags registers the editable fields on fs.
func employeeFlags(fs *flag.FlagSet) map[string]*string {
	return map[string]*string{
		"first": fs.String("first", "", "first name"),
		"last":  fs.String("last", "", "last name"),
		"email": fs.String("email", "", "email address"),
		"job":   fs.String("job", "", "job title"),
		"phone": fs.String("phone", "", "phone number"),
		"image": fs.String("image", "", "image url"),
	}
}

// applyFlags copies the flags that were given on the command line into in.
func applyFlags(fs *flag.FlagSet, vals map[string]*string, in *domain.EmployeeInput) {
	fs.Visit(func(f *flag.Flag) {
		v, ok := vals[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "first":
			in.FirstName = *v
		case "last":
			in.LastName = *v
		case "email":
			in.Email = *v
		case "job":
			in.JobTitle = *v
		case "phone":
			in.Phone = *v
		case "image":
			in.ImageURL = *v
		}
	})
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list", a.stderr)
	search := fs.String("search", "", "only show employees whose name or email contains this")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctl, err := a.load(ctx)
	if err != nil {
		return err
	}
	return writeTable(a.stdout, ctl.Filter(*search))
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := newFlagSet("add", a.stderr)
	vals := employeeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var in domain.EmployeeInput
	applyFlags(fs, vals, &in)
	if in.FirstName == "" || in.Email == "" {
		return errors.New("add: -first and -email are required")
	}

	ctl, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := ctl.SubmitCreate(ctx, &roster.StaticForm{In: in}); err != nil {
		return reported(err)
	}
	return writeTable(a.stdout, ctl.View())
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := newFlagSet("update", a.stderr)
	id := fs.Int64("id", 0, "employee id")
	vals := employeeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("update: -id is required")
	}

	ctl, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := ctl.SelectForEdit(domain.Employee{ID: *id}); err != nil {
		return err
	}
	e, ok := ctl.EditTarget()
	if !ok {
		return fmt.Errorf("%w: id %d", roster.ErrNotInRoster, *id)
	}
	applyFlags(fs, vals, &e.EmployeeInput)

	if err := ctl.SubmitUpdate(ctx, e); err != nil {
		return reported(err)
	}
	return writeTable(a.stdout, ctl.View())
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete", a.stderr)
	id := fs.Int64("id", 0, "employee id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("delete: -id is required")
	}

	ctl, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := ctl.SelectForDelete(domain.Employee{ID: *id}); err != nil {
		return err
	}
	target, _ := ctl.DeleteTarget()
	if err := ctl.SubmitDelete(ctx, target.ID); err != nil {
		return reported(err)
	}
	fmt.Fprintf(a.stdout, "deleted employee %d (%s)\n", target.ID, target.FullName())
	return nil
}

// show prints one record as fetched from the server, including fields the
// list table does not have.
func (a *app) show(ctx context.Context, args []string) error {
	fs := newFlagSet("show", a.stderr)
	var (
		id     = fs.Int64("id", 0, "employee id")
		fields = fs.String("fields", "", "comma separated JSON keys to print (default all)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("show: -id is required")
	}

	e, err := a.api.Find(ctx, *id)
	if httpx.StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("show: employee %d not found: %w", *id, err)
	}
	if err != nil {
		return err
	}
	var keys []string
	for _, k := range strings.Split(*fields, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	m, err := devutil.Pick(e, keys...)
	if err != nil {
		return err
	}
	return devutil.WriteFields(a.stdout, m)
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := newFlagSet("export", a.stderr)
	var (
		formatFlag = fs.String("format", "csv", "csv, xlsx or xml")
		outPath    = fs.String("out", "", "output path (default employees.<format>)")
		search     = fs.String("search", "", "export only the employees matching this term")
		uploadSFTP = fs.Bool("sftp", false, "upload the generated file via SFTP")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}
	if *outPath == "" {
		*outPath = "employees." + string(format)
	}
	if dir := filepath.Dir(*outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	ctl, err := a.load(ctx)
	if err != nil {
		return err
	}
	rows := ctl.Filter(*search)
	if err := export.WriteFile(*outPath, format, rows); err != nil {
		return err
	}
	logger.InfoLog(ctx, "wrote %d employees to %s", len(rows), *outPath)
	fmt.Fprintf(a.stdout, "wrote %d employees to %s\n", len(rows), *outPath)

	if *uploadSFTP {
		upCfg := sftpclient.FromConfig(a.cfg)
		remoteName := filepath.Base(*outPath)

		upCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		if err := sftpclient.UploadFile(upCtx, upCfg, *outPath, remoteName); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "uploaded to sftp://%s:%d%s/%s\n", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
	}
	return nil
}

func (a *app) importCSV(ctx context.Context, args []string) error {
	fs := newFlagSet("import", a.stderr)
	var (
		inPath  = fs.String("in", "", "csv file to import")
		workers = fs.Int("workers", concurrency.DefaultOptions().MaxWorkers, "concurrent create requests")
		dryRun  = fs.Bool("dry-run", false, "print the plan without creating anything")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return errors.New("import: -in is required")
	}

	f, err := os.Open(*inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := importer.ReadRows(f)
	if err != nil {
		return err
	}

	ctl, err := a.load(ctx)
	if err != nil {
		return err
	}
	plan := importer.Plan(ctl.Employees(), importer.Inputs(rows))
	for _, s := range plan.Skipped {
		fmt.Fprintf(a.stdout, "skip line %d (%s): %s\n", rows[s.Row].Line, s.Input.Email, s.Reason)
	}
	if *dryRun || len(plan.Create) == 0 {
		fmt.Fprintf(a.stdout, "%d to create, %d skipped\n", len(plan.Create), len(plan.Skipped))
		return nil
	}

	res := ctl.SubmitBatchCreate(ctx, plan.Create, concurrency.ParallelOptions{MaxWorkers: *workers})
	fmt.Fprintf(a.stdout, "created %d, failed %d, skipped %d\n", len(res.Created), len(res.Errors), len(plan.Skipped))
	if res.RefreshErr != nil {
		return reported(res.RefreshErr)
	}
	if len(res.Errors) > 0 {
		return reported(fmt.Errorf("import: %d creates failed", len(res.Errors)))
	}
	return nil
}

func writeTable(w io.Writer, employees []domain.Employee) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tJOB TITLE\tPHONE")
	for _, e := range employees {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.FullName(), e.Email, e.JobTitle, e.Phone)
	}
	return tw.Flush()
}
