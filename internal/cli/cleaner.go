package cli

import (
	"os"
	"path/filepath"

	"github.com/toyz/argcall/internal/errors"
	"github.com/toyz/argcall/internal/generator"
	"github.com/toyz/argcall/internal/utils"
)

// Cleaner removes generated files
type Cleaner struct {
	outputFile string
	dirFilter  utils.DirectoryFilter
}

// NewCleaner creates a cleaner for the given output file name
func NewCleaner(outputFile string, skipDirs []string) *Cleaner {
	return &Cleaner{
		outputFile: outputFile,
		dirFilter:  utils.DefaultDirectoryFilter(skipDirs...),
	}
}

// CleanGeneratedFiles removes the generated file from every directory named
// by the arguments and returns the removed paths. Files with the output
// name that argcall did not write are left alone.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	var removed []string

	for _, dir := range directories {
		base, recursive := splitPattern(dir)

		var candidates []string
		if recursive {
			found, err := utils.WalkFiles(base, utils.FileWalkOptions{
				FileFilter:      utils.NameFilter(c.outputFile),
				DirectoryFilter: c.dirFilter,
			})
			if err != nil {
				return removed, errors.WrapFileSystemError("scan", base, err)
			}
			candidates = found
		} else {
			candidates = []string{filepath.Join(base, c.outputFile)}
		}

		for _, path := range candidates {
			ok, err := c.remove(path)
			if err != nil {
				return removed, err
			}
			if ok {
				removed = append(removed, path)
			}
		}
	}

	return removed, nil
}

// remove deletes path if it holds a generated file
func (c *Cleaner) remove(path string) (bool, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapFileSystemError("read", path, err)
	}
	if !generator.IsGenerated(content) {
		return false, nil
	}
	if err := os.Remove(path); err != nil {
		return false, errors.WrapFileSystemError("remove", path, err)
	}
	return true, nil
}
