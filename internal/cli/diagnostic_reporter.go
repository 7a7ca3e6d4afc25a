package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/models"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterTo(os.Stderr, verbose)
}

// NewDiagnosticReporterTo creates a reporter writing to out
func NewDiagnosticReporterTo(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with every diagnostic it carries
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")

	var genErr *models.GeneratorError
	if stderrors.As(err, &genErr) {
		r.reportGeneratorError(genErr)
	} else {
		r.reportDiagnostics(err)
	}

	fmt.Fprintf(r.out, "\n")
}

// reportGeneratorError reports a GeneratorError with context and suggestions
func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	r.printErrorHeader(genErr.Type)

	fmt.Fprintf(r.out, "Message: %s\n\n", genErr.Message)
	if genErr.Cause != nil {
		// the cause carries the individual diagnostics
		r.reportDiagnostics(genErr.Cause)
	}

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.out, "File: %s\n\n", genErr.File)
		}
	}

	if r.verbose && len(genErr.Context) > 0 {
		r.printContext(genErr.Context)
	}

	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}

	r.printAdditionalHelp(genErr.Type)
}

// reportDiagnostics prints one entry per diagnostic. Each entry starts with
// file:line:col so editors can jump to it.
func (r *DiagnosticReporter) reportDiagnostics(err error) {
	var list []errors.ArgcallError
	var diags *errors.Diagnostics
	var single errors.ArgcallError
	switch {
	case stderrors.As(err, &diags):
		list = diags.Errors
	case stderrors.As(err, &single):
		list = []errors.ArgcallError{single}
	default:
		fmt.Fprintf(r.out, "%s\n\n", err.Error())
		return
	}

	red := color.New(color.FgRed)
	var suggestions []string
	seen := make(map[string]bool)
	for _, d := range list {
		if loc := d.Location(); !loc.IsEmpty() {
			fmt.Fprintf(r.out, "%s: ", loc)
		}
		red.Fprint(r.out, d.ErrorCode())
		fmt.Fprintf(r.out, ": %s\n", r.messageOf(d))

		if r.verbose && len(d.Context()) > 0 {
			r.printContext(d.Context())
		}
		for _, s := range d.Suggestions() {
			if !seen[s] {
				seen[s] = true
				suggestions = append(suggestions, s)
			}
		}
	}
	fmt.Fprintln(r.out)

	if len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
}

// messageOf returns the diagnostic text without the location prefix the
// reporter already printed
func (r *DiagnosticReporter) messageOf(d errors.ArgcallError) string {
	msg := d.Error()
	if loc := d.Location(); !loc.IsEmpty() {
		msg = strings.TrimPrefix(msg, loc.String()+": ")
	}
	return msg
}

// printErrorHeader prints a formatted error header based on error type
func (r *DiagnosticReporter) printErrorHeader(errorType models.ErrorType) {
	title := errorType.String()
	fmt.Fprintf(r.out, "Type: %s\n", title)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(title)+6))
}

// printContext prints context information in key order
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "   %s: %v\n", formatContextKey(key), context[key])
	}
	fmt.Fprintf(r.out, "\n")
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

// printAdditionalHelp prints help based on error type
func (r *DiagnosticReporter) printAdditionalHelp(errorType models.ErrorType) {
	switch errorType {
	case models.ErrorTypeAnnotationSyntax, models.ErrorTypeValidation:
		fmt.Fprintf(r.out, "Annotation Reference:\n")
		fmt.Fprintf(r.out, "  //argcall::callable -Output=T        on a sealed interface or struct\n")
		fmt.Fprintf(r.out, "  //argcall::fn name(Field, ...)       on a member, fields passed by name\n")
		fmt.Fprintf(r.out, "  //argcall::fn_path \"pkg.Func\"        on a member, fields passed in order\n")
		fmt.Fprintf(r.out, "  no annotation                        on a member embedding one callable value\n\n")

	case models.ErrorTypeConfiguration:
		fmt.Fprintf(r.out, "Configuration Keys (%s):\n", DefaultConfigFile)
		fmt.Fprintf(r.out, "  directories, output_file, typecheck, workers, skip_dirs\n\n")
	}

	if !r.verbose {
		fmt.Fprintf(r.out, "Run with -verbose for more detailed output\n")
	}
}

// ReportSuccess reports successful generation with summary information
func (r *DiagnosticReporter) ReportSuccess(summary models.GenerationSummary) {
	fmt.Fprintf(r.out, "\nProcessed %d packages, %d containers, %d members\n",
		summary.PackagesProcessed, summary.ContainersFound, summary.MembersFound)
	if summary.FilesUnchanged > 0 {
		fmt.Fprintf(r.out, "%d generated files already up to date\n", summary.FilesUnchanged)
	}
	if len(summary.GeneratedFiles) > 0 {
		fmt.Fprintf(r.out, "\nGenerated files:\n")
		for _, file := range summary.GeneratedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}
