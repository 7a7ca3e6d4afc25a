package parser

import "github.com/toyz/argcall/internal/models"

// PackageParser defines the interface for extracting callable containers from a Go package
type PackageParser interface {
	ParseDirectory(path string) (*models.PackageMetadata, error)
}

var _ PackageParser = (*Parser)(nil)
