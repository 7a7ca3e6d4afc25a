package generator

import "github.com/toyz/argcall/internal/models"

// CodeGenerator defines the interface for rendering the generated file of a package
type CodeGenerator interface {
	GenerateFile(metadata *models.PackageMetadata) (*models.GeneratedFile, error)
	OutputFile() string
}

var _ CodeGenerator = (*Generator)(nil)
