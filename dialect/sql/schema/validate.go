package schema

import (
	"context"
	"fmt"
	"strings"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/mysql"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/dialect"
	"github.com/syssam/chinook/dialect/sql"
)

// Column names a column read by the resolvers.
type Column struct {
	Name string
	// Required columns must be NOT NULL; a nullable required column only
	// produces a warning, since the rows are checked again at read time.
	Required bool
}

// Table lists the columns read from a single table.
type Table struct {
	Name    string
	Columns []Column
}

// Chinook is the subset of the chinook catalog read by the service.
var Chinook = []Table{
	{
		Name: chinook.KindArtist.Table(),
		Columns: []Column{
			{Name: chinook.KindArtist.IDColumn(), Required: true},
			{Name: "Name", Required: true},
		},
	},
	{
		Name: chinook.KindAlbum.Table(),
		Columns: []Column{
			{Name: chinook.KindAlbum.IDColumn(), Required: true},
			{Name: "Title", Required: true},
			{Name: chinook.KindArtist.IDColumn(), Required: true},
		},
	},
	{
		Name: chinook.KindTrack.Table(),
		Columns: []Column{
			{Name: chinook.KindTrack.IDColumn(), Required: true},
			{Name: "Name", Required: true},
			{Name: chinook.KindAlbum.IDColumn()},
			{Name: "Composer"},
			{Name: "Milliseconds"},
			{Name: "Bytes"},
			{Name: "UnitPrice"},
		},
	},
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the validation errors joined into one error, or nil.
func (r *ValidationResult) Err() error {
	if !r.HasErrors() {
		return nil
	}
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("schema: %s", strings.Join(msgs, "; "))
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// Inspect reads the current shape of the given tables from the store.
//
// Example:
//
//	s, err := schema.Inspect(ctx, drv, schema.Chinook)
//	if err != nil {
//	    return err
//	}
//	if res := schema.Validate(s, schema.Chinook); res.HasErrors() {
//	    log.Fatal(res)
//	}
func Inspect(ctx context.Context, drv *sql.Driver, tables []Table) (*schema.Schema, error) {
	var (
		atDriver migrate.Driver
		err      error
		name     string
	)
	switch drv.Dialect() {
	case dialect.SQLite:
		atDriver, err = sqlite.Open(drv.DB())
		name = "main"
	case dialect.Postgres:
		atDriver, err = postgres.Open(drv.DB())
	case dialect.MySQL:
		atDriver, err = mysql.Open(drv.DB())
	default:
		return nil, fmt.Errorf("schema: unsupported dialect %q", drv.Dialect())
	}
	if err != nil {
		return nil, fmt.Errorf("schema: open atlas driver: %w", err)
	}
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}
	s, err := atDriver.InspectSchema(ctx, name, &schema.InspectOptions{Tables: names})
	if err != nil {
		return nil, fmt.Errorf("schema: inspect: %w", err)
	}
	return s, nil
}

// Validate checks that every table and column in want exists in s.
// Missing tables and columns are errors; nullable required columns are warnings.
func Validate(s *schema.Schema, want []Table) *ValidationResult {
	result := &ValidationResult{}
	for _, wt := range want {
		t, ok := s.Table(wt.Name)
		if !ok {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   wt.Name,
				Message: "table does not exist",
			})
			continue
		}
		for _, wc := range wt.Columns {
			c, ok := t.Column(wc.Name)
			if !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   wt.Name,
					Column:  wc.Name,
					Message: "column does not exist",
				})
				continue
			}
			if wc.Required && c.Type != nil && c.Type.Null {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   wt.Name,
					Column:  wc.Name,
					Message: "required column is nullable; NULL rows will fail at read time",
				})
			}
		}
	}
	return result
}

// Check inspects the store and validates it against want.
func Check(ctx context.Context, drv *sql.Driver, want []Table) (*ValidationResult, error) {
	s, err := Inspect(ctx, drv, want)
	if err != nil {
		return nil, err
	}
	return Validate(s, want), nil
}
