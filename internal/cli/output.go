package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/camellia/internal/model"
	"github.com/roach88/camellia/internal/store"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Request rejected (validation, stock, lifecycle, login, etc.)
	ExitCommandError = 2 // Command error (bad flags, unreadable config, storage failure)
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeNotFound          = "E002" // Product, user or order not found
	ErrCodeDuplicate         = "E003" // Id or username already taken
	ErrCodeInvalidField      = "E004" // Field failed validation
	ErrCodeInsufficientStock = "E005" // Not enough stock
	ErrCodeEmptyOrder        = "E006" // Order without items
	ErrCodeTransition        = "E007" // Status change not allowed
	ErrCodeAuth              = "E008" // Wrong username or password
	ErrCodeForbidden         = "E009" // Role or self-action not permitted
	ErrCodeStorage           = "E010" // Data directory or file write failure
	ErrCodeConfig            = "E011" // Configuration could not be loaded
	ErrCodeCatalog           = "E012" // Catalog import problems
	ErrCodeJournal           = "E013" // Journal disabled or unreadable
	ErrCodeUsage             = "E014" // Malformed flag value
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // "E0xx" code shown to the user; ErrCodeGeneric if empty
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written through an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code and error code.
func WrapExitError(code int, errCode, message string, err error) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already written to the command output.
func IsReported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON reports whether output should be machine-readable.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// Textf writes a line of human-readable output. It is a no-op in JSON mode.
func (f *OutputFormatter) Textf(format string, args ...any) {
	if f.JSON() {
		return
	}
	fmt.Fprintf(f.Writer, format+"\n", args...)
}

func usageError(message string) error {
	return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeUsage, Message: message}
}

func notFoundError(format string, args ...any) error {
	return &ExitError{Code: ExitFailure, ErrCode: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// report writes err through f and returns an ExitError carrying the exit
// code for its class.
func report(f *OutputFormatter, err error) error {
	code, exit, details := classify(err)
	_ = f.Error(code, err.Error(), details)
	return &ExitError{Code: exit, ErrCode: code, Message: err.Error(), reported: true}
}

func classify(err error) (code string, exit int, details any) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ErrCode
		if code == "" {
			code = ErrCodeGeneric
		}
		return code, exitErr.Code, nil
	}

	if store.IsFlushError(err) {
		return ErrCodeStorage, ExitCommandError, nil
	}
	if model.IsTransitionError(err) {
		return ErrCodeTransition, ExitFailure, nil
	}

	var se *store.Error
	if errors.As(err, &se) {
		var d any
		if len(se.Details) > 0 {
			d = se.Details
		}
		return storeErrCodes[se.Code], ExitFailure, d
	}
	return ErrCodeGeneric, ExitFailure, nil
}

var storeErrCodes = map[store.ErrorCode]string{
	store.ErrCodeNotFound:          ErrCodeNotFound,
	store.ErrCodeDuplicate:         ErrCodeDuplicate,
	store.ErrCodeInvalidField:      ErrCodeInvalidField,
	store.ErrCodeInsufficientStock: ErrCodeInsufficientStock,
	store.ErrCodeEmptyOrder:        ErrCodeEmptyOrder,
}

var rupiahPrinter = message.NewPrinter(language.Indonesian)

// formatRupiah renders an amount in whole rupiah with Indonesian digit
// grouping, e.g. "Rp 15.000".
func formatRupiah(d decimal.Decimal) string {
	return rupiahPrinter.Sprintf("Rp %d", d.Round(0).IntPart())
}
