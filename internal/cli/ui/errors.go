// Package ui formats CLI-facing diagnostics: colored error/success
// messages and fuzzy-match suggestions for a mistyped -t TYPE.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a diagnostic message.
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures diagnostic message formatting.
type ErrorOptions struct {
	Level        ErrorLevel
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError renders a standardized diagnostic with suggestions and help
// commands.
//
// Example output:
//
//	❌ TYPE NOT FOUND: Cannot find message/struct/table 'Persn' in person.proto.
//	   Cannot find message/struct/table 'Persn' in person.proto.
//
//	   Did you mean: Person, Permission?
//
//	   → List candidate types: unibuf schema person.proto
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	case ErrorLevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Problem != "" && opts.Context != "" {
		bodyColor.Fprintf(&b, "   %s\n", opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteError writes a formatted diagnostic to w.
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message.
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to w.
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// TypeNotFoundError formats the diagnostic shown when -t TYPE does not
// resolve to a message, struct, or table declared in the schema.
func TypeNotFoundError(typeName, schemaPath string, suggestions []string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "TYPE NOT FOUND",
		Problem: fmt.Sprintf("Cannot find message/struct/table '%s' in %s.", typeName, schemaPath),
		Suggestions: suggestions,
		HelpCommands: []string{
			fmt.Sprintf("List candidate types: unibuf schema %s", schemaPath),
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ParseFailedError formats the diagnostic shown when a parse/decode call
// fails against the given schema.
func ParseFailedError(message string, schemaPath string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "PARSE FAILED",
		Problem: message,
		HelpCommands: []string{
			fmt.Sprintf("Inspect the schema: unibuf schema %s", schemaPath),
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ValidationFailedError formats the diagnostic shown when `unibuf validate`
// finds one or more type errors.
func ValidationFailedError(issueCount int, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "VALIDATION FAILED",
		Problem: fmt.Sprintf("%d field(s) did not satisfy their declared type.", issueCount),
		NoColor: noColor,
	}
	return FormatError(opts)
}

// ConfigError formats a .unibuf.yaml configuration diagnostic.
func ConfigError(message string, noColor bool) string {
	opts := ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIGURATION ERROR",
		Problem: message,
		HelpCommands: []string{
			"View config: cat .unibuf.yaml",
			"Get help: unibuf --help",
		},
		NoColor: noColor,
	}
	return FormatError(opts)
}

// Warning formats a standalone warning message.
func Warning(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelWarning, Problem: message, NoColor: noColor})
}

// Info formats a standalone info message.
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{Level: ErrorLevelInfo, Problem: message, NoColor: noColor})
}
