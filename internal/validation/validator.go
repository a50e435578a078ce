// =============================================================================
// CPS Positions - Validation Engine
// =============================================================================
//
// This module turns raw table rows into PositionRecords and checks user
// selections against the catalogs.
//
// VALIDATION LEVELS:
//   1. Table-level: required columns are present
//   2. Row-level: status is a known category, positions is a non-negative
//      whole number, date is present
//   3. Selection-level: selected names exist in the catalogs (warnings only)
//
// ERROR HANDLING:
//   - Errors are collected, not thrown immediately, so a single load reports
//     every bad row at once
//   - Each error carries the source, row and field it refers to
//   - Errors are "error" (fatal, the load fails) or "warning" (reported and
//     ignored)
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anthonymoser/cps-positions/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation problem.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Source is the file (or logical input) the value came from.
	Source string

	// RowNumber is the 1-based source line. Zero when not row-specific.
	RowNumber int

	// Field is the column or selection field that failed.
	Field string

	// Value is the offending value.
	Value string

	// Rule names the violated rule, e.g. "required" or "status".
	Rule string

	// Message is a human-readable explanation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := e.Source
	if e.RowNumber > 0 {
		location = fmt.Sprintf("%s row %d", e.Source, e.RowNumber)
	}
	return fmt.Sprintf("[%s] %s, field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		location,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validating a table.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the number of rows inspected.
	RowsValidated int
}

// add records e and updates the counters.
func (r *ValidationResult) add(e *ValidationError, options ValidationOptions) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
		return
	}
	r.WarningCount++
	if options.TreatWarningsAsErrors {
		r.IsValid = false
	}
}

// Err returns a *LoadError when the result is invalid, otherwise nil.
func (r *ValidationResult) Err(source string) error {
	if r.IsValid {
		return nil
	}
	return &LoadError{Source: source, Errors: r.Errors}
}

// LoadError reports every fatal problem found while loading one input.
type LoadError struct {
	Source string
	Errors []*ValidationError
}

// maxListedErrors caps how many row errors LoadError.Error spells out.
const maxListedErrors = 5

// Error implements the error interface.
func (e *LoadError) Error() string {
	var fatal []*ValidationError
	for _, ve := range e.Errors {
		if ve.Severity == SeverityError {
			fatal = append(fatal, ve)
		}
	}
	if len(fatal) == 0 {
		fatal = e.Errors
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s: %d invalid row(s)", e.Source, len(fatal)))
	for i, ve := range fatal {
		if i == maxListedErrors {
			builder.WriteString(fmt.Sprintf("; and %d more", len(fatal)-maxListedErrors))
			break
		}
		builder.WriteString("; ")
		builder.WriteString(ve.Error())
	}
	return builder.String()
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors makes warnings invalidate the result.
	// Default: false
	TreatWarningsAsErrors bool
}

// Validator performs validation on input tables and selections.
type Validator struct {
	options ValidationOptions
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// =============================================================================
// TABLE VALIDATION
// =============================================================================

// PositionColumns are the columns the position metadata table must carry.
var PositionColumns = []string{
	types.ColumnDepartment,
	types.ColumnJobTitle,
	types.ColumnDate,
	types.ColumnStatus,
	types.ColumnPositions,
}

// RequireColumns checks that every required column appears in headers.
func (v *Validator) RequireColumns(source string, headers []string, required ...string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	result := &ValidationResult{IsValid: true}
	for _, column := range required {
		if !present[column] {
			result.add(&ValidationError{
				Severity: SeverityError,
				Source:   source,
				Field:    column,
				Rule:     "required_column",
				Message:  "column is missing",
			}, v.options)
		}
	}
	return result.Err(source)
}

// PositionRecords converts header-keyed rows into PositionRecords.
//
// PARAMETERS:
//   - source: The input name used in error messages.
//   - rows: Header-keyed rows from the CSV or XLSX parser.
//   - lines: The 1-based source line of each row (may be nil).
//
// RETURNS:
//   - The parsed records, in input order.
//   - The full validation result. Callers should treat result.Err as fatal.
func (v *Validator) PositionRecords(source string, rows []map[string]string, lines []int) ([]types.PositionRecord, *ValidationResult) {
	result := &ValidationResult{IsValid: true, RowsValidated: len(rows)}
	records := make([]types.PositionRecord, 0, len(rows))

	for i, row := range rows {
		line := i + 1
		if i < len(lines) {
			line = lines[i]
		}

		record, rowErrors := v.PositionRecord(source, line, row)
		for _, e := range rowErrors {
			result.add(e, v.options)
		}
		if len(rowErrors) == 0 {
			records = append(records, record)
		}

		if v.options.StopOnFirstError && result.ErrorCount > 0 {
			break
		}
	}

	return records, result
}

// PositionRecord validates a single row and builds its record.
func (v *Validator) PositionRecord(source string, line int, row map[string]string) (types.PositionRecord, []*ValidationError) {
	var errs []*ValidationError
	fail := func(field, value, rule, message string) {
		errs = append(errs, &ValidationError{
			Severity:  SeverityError,
			Source:    source,
			RowNumber: line,
			Field:     field,
			Value:     value,
			Rule:      rule,
			Message:   message,
		})
	}

	record := types.PositionRecord{
		Department: row[types.ColumnDepartment],
		JobTitle:   row[types.ColumnJobTitle],
		Date:       row[types.ColumnDate],
	}

	if record.Date == "" {
		fail(types.ColumnDate, "", "required", "reporting date is empty")
	}

	rawStatus := row[types.ColumnStatus]
	status, err := types.ParseStatus(rawStatus)
	if err != nil {
		fail(types.ColumnStatus, rawStatus, "status", "status must be Filled, Change in staff, Open or Does not exist")
	}
	record.Status = status

	rawPositions := row[types.ColumnPositions]
	positions, err := ParsePositions(rawPositions)
	if err != nil {
		fail(types.ColumnPositions, rawPositions, "positions", err.Error())
	}
	record.Positions = positions

	return record, errs
}

// maxPositions is the largest count that fits an int64.
var maxPositions = decimal.NewFromInt(math.MaxInt64)

// ParsePositions parses a position count. Integral decimals such as "10.0"
// are accepted; fractions, negatives and non-numbers are rejected.
func ParsePositions(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("positions is empty")
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("positions is not a number")
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("positions must not be negative")
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("positions must be a whole number")
	}
	if d.GreaterThan(maxPositions) {
		return 0, fmt.Errorf("positions is too large")
	}

	return d.IntPart(), nil
}

// =============================================================================
// SELECTION VALIDATION
// =============================================================================

// ValidateSelection warns about selected names that do not appear in the
// catalogs. Unknown names are not fatal: they simply match no rows.
func (v *Validator) ValidateSelection(sel types.Selection, jobs, departments []string) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	check := func(field string, selected, catalog []string) {
		known := make(map[string]bool, len(catalog))
		for _, c := range catalog {
			known[c] = true
		}
		for _, s := range selected {
			if !known[s] {
				result.add(&ValidationError{
					Severity: SeverityWarning,
					Source:   "selection",
					Field:    field,
					Value:    s,
					Rule:     "catalog",
					Message:  "not found in catalog",
				}, v.options)
			}
		}
	}

	check(types.ColumnJobTitle, sel.Jobs, jobs)
	check(types.ColumnDepartment, sel.Departments, departments)

	return result
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d problem(s):\n\n", len(errors)))
	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}
