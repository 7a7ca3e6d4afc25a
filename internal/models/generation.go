package models

// GeneratedFile represents the generated code of one package
type GeneratedFile struct {
	PackageName string   // name of the package
	FilePath    string   // path where the file should be written
	Content     string   // formatted Go code
	Containers  []string // containers implemented by the file
}

// GenerationSummary collects statistics about a generator run
type GenerationSummary struct {
	PackagesProcessed int
	ContainersFound   int
	MembersFound      int
	FilesGenerated    int
	FilesUnchanged    int
	FilesRemoved      int
	Warnings          int
	GeneratedFiles    []string
	StaleFiles        []string // files -check found out of date
}
