// Command argcall generates Call, CallMut and CallOnce methods for types
// annotated with //argcall::callable. It is meant to run from go generate:
//
//	//go:generate go run github.com/toyz/argcall/cmd/argcall .
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/toyz/argcall/internal/cli"
	"github.com/toyz/argcall/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("argcall", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configFlag    = flags.String("config", "", "Path to a YAML configuration file (default ./"+cli.DefaultConfigFile+" when present)")
		outputFlag    = flags.String("output", "", "Name of the generated file in each package")
		typecheckFlag = flags.Bool("typecheck", true, "Load packages with type information to check bindings and infer output types")
		workersFlag   = flags.Int("workers", 0, "Number of packages processed in parallel (default GOMAXPROCS)")
		skipFlag      = flags.String("skip", "", "Comma-separated directory names to skip when scanning")
		verboseFlag   = flags.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag     = flags.Bool("quiet", false, "Only show errors")
		debugFlag     = flags.Bool("debug", false, "Dump parsed metadata of every package")
		checkFlag     = flags.Bool("check", false, "Report generated files that are out of date without writing them")
		cleanFlag     = flags.Bool("clean", false, "Delete generated files from the specified directories")
		watchFlag     = flags.Bool("watch", false, "Regenerate whenever sources change")
		helpFlag      = flags.Bool("help", false, "Show help information")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: argcall [options] [directory-paths...]\n\n")
		fmt.Fprintf(stderr, "argcall Code Generator\n")
		fmt.Fprintf(stderr, "Generates Call methods and dispatch functions for types annotated with //argcall::callable.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  directory-paths    Directories to process (default: directories from the config, or .)\n")
		fmt.Fprintf(stderr, "                     Supports Go-style patterns like './...' for recursive scanning\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  //go:generate go run github.com/toyz/argcall/cmd/argcall .\n")
		fmt.Fprintf(stderr, "  argcall ./...                 # Generate for every package recursively\n")
		fmt.Fprintf(stderr, "  argcall -check ./...          # Fail when generated files are out of date\n")
		fmt.Fprintf(stderr, "  argcall -typecheck=false .    # Syntax-only mode, no package loading\n")
		fmt.Fprintf(stderr, "  argcall -clean ./...          # Delete generated files\n")
		fmt.Fprintf(stderr, "  argcall -watch ./internal/... # Regenerate on change\n")
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *helpFlag {
		flags.Usage()
		return 0
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diagnostics = utils.NewQuietDiagnostics()
	case *debugFlag:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	case *verboseFlag:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.SetOutput(stdout, stderr)
	reporter := cli.NewDiagnosticReporterTo(stderr, *verboseFlag || *debugFlag)

	configPath, required := cli.DefaultConfigFile, false
	if *configFlag != "" {
		configPath, required = *configFlag, true
	}
	config, err := cli.LoadConfig(configPath, required)
	if err != nil {
		reporter.ReportError(err)
		return 1
	}

	// explicitly set flags win over the configuration file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output":
			config.OutputFile = *outputFlag
		case "typecheck":
			config.TypeCheck = *typecheckFlag
		case "workers":
			config.Workers = *workersFlag
		case "skip":
			for _, dir := range strings.Split(*skipFlag, ",") {
				if dir = strings.TrimSpace(dir); dir != "" {
					config.SkipDirs = append(config.SkipDirs, dir)
				}
			}
		}
	})
	if flags.NArg() > 0 {
		config.Directories = flags.Args()
	}
	config.Check = *checkFlag
	config.Verbose = *verboseFlag

	if err := config.Validate(); err != nil {
		reporter.ReportError(err)
		return 1
	}

	diagnostics.Header(strings.Join(config.Directories, " "))
	diagnostics.Debug("Configuration: %+v", config)

	if *cleanFlag {
		cleaner := cli.NewCleaner(config.OutputFile, config.SkipDirs)
		removed, err := cleaner.CleanGeneratedFiles(config.Directories)
		for _, file := range removed {
			diagnostics.PhaseProgress("Removing " + file)
		}
		if err != nil {
			reporter.ReportError(err)
			return 1
		}
		diagnostics.Success("Removed %d generated files", len(removed))
		return 0
	}

	generator := cli.NewGenerator(diagnostics, reporter)

	if *watchFlag {
		if err := cli.NewWatcher(generator, config, diagnostics).Run(ctx); err != nil {
			reporter.ReportError(err)
			return 1
		}
		return 0
	}

	if err := generator.Run(ctx, config); err != nil {
		reporter.ReportError(err)
		return 1
	}

	summary := generator.GetSummary()
	diagnostics.Summary("Summary", map[string]interface{}{
		"Packages processed": summary.PackagesProcessed,
		"Containers found":   summary.ContainersFound,
		"Members found":      summary.MembersFound,
		"Files written":      summary.FilesGenerated,
		"Files unchanged":    summary.FilesUnchanged,
		"Files removed":      summary.FilesRemoved,
		"Warnings":           summary.Warnings,
	})
	if config.Check {
		diagnostics.Success("All generated files are up to date")
	} else {
		diagnostics.GenerationComplete()
	}
	return 0
}
