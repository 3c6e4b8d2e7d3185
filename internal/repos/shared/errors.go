package shared

import "fmt"

const (
	repositoryDirectoryMissingTemplateConstant = "Repository directory does not exist: %s"
)

// RepositoryDirectoryMissingError reports an operation that needs a checkout which is not on disk.
type RepositoryDirectoryMissingError struct {
	Directory string
}

// Error describes the missing directory.
func (missingError RepositoryDirectoryMissingError) Error() string {
	return fmt.Sprintf(repositoryDirectoryMissingTemplateConstant, missingError.Directory)
}
