package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/generator"
	"github.com/toyz/argcall/internal/models"
	"github.com/toyz/argcall/internal/parser"
	"github.com/toyz/argcall/internal/utils"
)

// fileAction is what happened to a package's generated file
type fileAction int

const (
	actionNone      fileAction = iota // no containers and no generated file
	actionWritten                     // file created or updated
	actionUnchanged                   // file already current
	actionRemoved                     // leftover file of a package without containers removed
	actionStale                       // -check found the file out of date
)

// packageResult is the outcome of processing one package
type packageResult struct {
	dir      string
	metadata *models.PackageMetadata
	file     *models.GeneratedFile
	path     string
	action   fileAction
	err      error
}

// Generator coordinates the CLI generation process
type Generator struct {
	moduleResolver *ModuleResolver
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem
	summary        models.GenerationSummary
}

// NewGenerator creates a new CLI generator
func NewGenerator(diagnostics *utils.DiagnosticSystem, reporter *DiagnosticReporter) *Generator {
	if diagnostics == nil {
		diagnostics = utils.NewQuietDiagnostics()
	}
	if reporter == nil {
		reporter = NewDiagnosticReporter(false)
	}
	return &Generator{
		moduleResolver: NewModuleResolver(),
		reporter:       reporter,
		diagnostics:    diagnostics,
	}
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() models.GenerationSummary {
	return g.summary
}

// ReportSuccess reports successful generation using the diagnostic reporter
func (g *Generator) ReportSuccess() {
	g.reporter.ReportSuccess(g.summary)
}

// Run executes the complete generation process. Every package is processed
// even when some fail; the returned error then carries all diagnostics.
func (g *Generator) Run(ctx context.Context, config Config) error {
	startTime := time.Now()
	g.summary = models.GenerationSummary{}

	if err := config.Validate(); err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeConfiguration,
			Message: err.Error(),
		}
	}

	g.diagnostics.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))
	g.diagnostics.Debug("Scanning directories: %v", config.Directories)

	scanner := NewDirectoryScanner(config.OutputFile, config.SkipDirs)
	packageDirs, err := scanner.ScanDirectories(config.Directories)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: fmt.Sprintf("Failed to scan directories: %v", err),
			Cause:   err,
			Suggestions: []string{
				"Check that the specified directories exist",
				"Ensure you have read permissions for the directories",
			},
			Context: map[string]interface{}{
				"directories": config.Directories,
			},
		}
	}

	if len(packageDirs) == 0 {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "No Go packages found in specified directories",
			Suggestions: []string{
				"Ensure the directories contain Go files",
				"Use the ./... pattern to scan subdirectories",
			},
			Context: map[string]interface{}{
				"directories": config.Directories,
			},
		}
	}

	g.diagnostics.PhaseHeader(fmt.Sprintf("Processing %d packages", len(packageDirs)))
	g.diagnostics.Indent()
	for _, dir := range packageDirs {
		g.diagnostics.Verbose("%s", displayPath(dir))
	}
	g.diagnostics.Unindent()

	for _, warning := range g.moduleResolver.CheckGoVersions(packageDirs) {
		g.reporter.ReportWarning(warning)
		g.summary.Warnings++
	}

	results, err := g.processPackages(ctx, packageDirs, config)
	if err != nil {
		return err
	}

	err = g.collect(results, config)
	g.diagnostics.Verbose("Generation finished in %v", time.Since(startTime).Round(time.Millisecond))
	return err
}

// processPackages parses and generates every package with at most
// config.Workers packages in flight
func (g *Generator) processPackages(ctx context.Context, packageDirs []string, config Config) ([]packageResult, error) {
	results := make([]packageResult, len(packageDirs))
	codeGenerator := generator.NewGeneratorWithOptions(generator.Options{OutputFile: config.OutputFile})

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(config.Workers)
	for i, dir := range packageDirs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = g.processPackage(dir, config, codeGenerator)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processPackage runs parse, generate and write for one directory
func (g *Generator) processPackage(dir string, config Config, codeGenerator generator.CodeGenerator) packageResult {
	result := packageResult{dir: dir, path: filepath.Join(dir, config.OutputFile)}

	p := parser.NewParserWithOptions(parser.Options{
		TypeCheck:  config.TypeCheck,
		OutputFile: config.OutputFile,
	})
	metadata, err := p.ParseDirectory(dir)
	result.metadata = metadata
	if err != nil {
		result.err = err
		return result
	}

	if importPath, err := g.moduleResolver.ResolveImportPath(dir); err == nil {
		metadata.ImportPath = importPath
	} else {
		g.diagnostics.Debug("%s: %v", displayPath(dir), err)
	}
	g.diagnostics.Dump(displayPath(dir), metadata)

	file, err := codeGenerator.GenerateFile(metadata)
	if err != nil {
		result.err = err
		return result
	}
	result.file = file

	if file == nil {
		result.action, result.err = leftoverFile(result.path, config.Check)
		return result
	}

	if config.Check {
		stale, err := generator.Stale(file)
		result.err = err
		if stale {
			result.action = actionStale
		} else {
			result.action = actionUnchanged
		}
		return result
	}

	changed, err := generator.WriteFile(file)
	result.err = err
	if changed {
		result.action = actionWritten
	} else {
		result.action = actionUnchanged
	}
	return result
}

// leftoverFile handles the generated file of a package that no longer has
// containers: it is stale under -check and removed otherwise.
func leftoverFile(path string, check bool) (fileAction, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return actionNone, nil
	}
	if err != nil {
		return actionNone, errors.WrapFileSystemError("read", path, err)
	}
	if !generator.IsGenerated(content) {
		return actionNone, nil
	}
	if check {
		return actionStale, nil
	}
	if err := os.Remove(path); err != nil {
		return actionNone, errors.WrapFileSystemError("remove", path, err)
	}
	return actionRemoved, nil
}

// collect reports the results in package order and builds the summary
func (g *Generator) collect(results []packageResult, config Config) error {
	g.summary.PackagesProcessed = len(results)

	failures := &errors.Diagnostics{}
	failed := 0
	for _, result := range results {
		if result.metadata != nil {
			for _, warning := range result.metadata.Warnings {
				g.reporter.ReportWarning(warning)
				g.summary.Warnings++
			}
		}

		if result.err != nil {
			failed++
			failures.Add(packageError(result))
			g.diagnostics.Error("%s: generation failed", displayPath(result.dir))
			continue
		}

		for _, container := range result.metadata.Containers {
			g.summary.ContainersFound++
			g.summary.MembersFound += len(container.Members)
		}

		switch result.action {
		case actionWritten:
			g.diagnostics.PhaseProgress("Writing " + displayPath(result.path))
			g.summary.FilesGenerated++
			g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, result.path)
		case actionUnchanged:
			g.diagnostics.Verbose("%s is up to date", displayPath(result.path))
			g.summary.FilesUnchanged++
		case actionRemoved:
			g.diagnostics.PhaseProgress("Removing " + displayPath(result.path))
			g.summary.FilesRemoved++
		case actionStale:
			g.diagnostics.Warn("%s is out of date", displayPath(result.path))
			g.summary.StaleFiles = append(g.summary.StaleFiles, result.path)
		}
	}

	if failed > 0 {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: fmt.Sprintf("%d of %d packages failed; no file was written for them", failed, len(results)),
			Cause:   failures.Err(),
			Context: map[string]interface{}{
				"directories": config.Directories,
			},
		}
	}

	if config.Check && len(g.summary.StaleFiles) > 0 {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: fmt.Sprintf("%d generated files are out of date", len(g.summary.StaleFiles)),
			Suggestions: []string{
				"Run go generate ./... and commit the result",
			},
			Context: map[string]interface{}{
				"stale_files": g.summary.StaleFiles,
			},
		}
	}

	return nil
}

// packageError attaches the package directory to errors that carry no
// location of their own
func packageError(result packageResult) error {
	switch result.err.(type) {
	case *errors.Diagnostics, errors.ArgcallError:
		return result.err
	}
	return errors.Wrap(errors.GenerationErrorCode, displayPath(result.dir), result.err)
}

// displayPath shortens path relative to the working directory when possible
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || filepath.IsAbs(rel) || len(rel) > len(path) {
		return path
	}
	return rel
}
