// Package commands implements the unibuf command-line surface: parse,
// validate, convert, and schema.
package commands

import (
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "unibuf",
		Short: "Parse, validate, and convert Protocol Buffers, Cap'n Proto, and FlatBuffers data",
		Long: color.CyanString(`unibuf - a polyglot schema and data toolkit

unibuf reads and writes Protocol Buffers, Cap'n Proto, and FlatBuffers
schemas and their binary wire formats from one command-line tool and one Go
library.

Commands:
  • parse    — decode a data file into JSON, YAML, or textproto
  • validate — check a data file's fields against its declared proto3 types
  • convert  — re-encode a data file into another format
  • schema   — show the messages/structs/tables a schema declares`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log internal schema/codec steps to stderr")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewParseCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewConvertCommand())
	rootCmd.AddCommand(NewSchemaCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Print("unibuf version: ")
			valueColor.Println(Version)

			titleColor.Print("Git commit: ")
			valueColor.Println(GitCommit)

			titleColor.Print("Build date: ")
			valueColor.Println(BuildDate)

			titleColor.Print("Go version: ")
			valueColor.Println(goVer)
		},
	}
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
