package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/utils"
)

// DirectoryScanner resolves directory arguments into Go package directories
type DirectoryScanner struct {
	dirFilter  utils.DirectoryFilter
	fileFilter utils.FileFilter
}

// NewDirectoryScanner creates a scanner that ignores the generated file and
// the given directory names
func NewDirectoryScanner(outputFile string, skipDirs []string) *DirectoryScanner {
	return &DirectoryScanner{
		dirFilter:  utils.DefaultDirectoryFilter(skipDirs...),
		fileFilter: utils.GoFileFilter(outputFile),
	}
}

// splitPattern separates a Go-style recursive pattern like ./... into its
// base directory
func splitPattern(dir string) (string, bool) {
	if dir == "..." {
		return ".", true
	}
	if base, ok := strings.CutSuffix(dir, "/..."); ok {
		if base == "" {
			base = "."
		}
		return base, true
	}
	return dir, false
}

// ScanDirectories returns the package directories named by the arguments.
// A plain directory names only itself; a trailing /... adds every package
// below it.
func (s *DirectoryScanner) ScanDirectories(rootDirs []string) ([]string, error) {
	var packageDirs []string
	seen := make(map[string]bool)

	add := func(dirs ...string) {
		for _, dir := range dirs {
			if !seen[dir] {
				seen[dir] = true
				packageDirs = append(packageDirs, dir)
			}
		}
	}

	for _, rootDir := range rootDirs {
		base, recursive := splitPattern(rootDir)

		absDir, err := filepath.Abs(base)
		if err != nil {
			return nil, errors.WrapFileSystemError("resolve", base, err)
		}
		info, err := os.Stat(absDir)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", base, err)
		}
		if !info.IsDir() {
			return nil, errors.New(errors.FileSystemErrorCode, fmt.Sprintf("%s is not a directory", base))
		}

		if !recursive {
			ok, err := utils.HasGoFiles(absDir, s.fileFilter)
			if err != nil {
				return nil, errors.WrapFileSystemError("read", base, err)
			}
			if ok {
				add(absDir)
			}
			continue
		}

		dirs, err := utils.PackageDirs(absDir, s.dirFilter, s.fileFilter)
		if err != nil {
			return nil, errors.WrapFileSystemError("scan", base, err)
		}
		add(dirs...)
	}

	return packageDirs, nil
}
