package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/repos/internal/execshell"
)

// OperationName identifies a git primitive for error reporting.
type OperationName string

// Git primitives that can fail.
const (
	OperationClone        OperationName = "clone"
	OperationRemove       OperationName = "remove"
	OperationStatus       OperationName = "status"
	OperationCreateBranch OperationName = "create_branch"
	OperationAdd          OperationName = "add"
	OperationCommit       OperationName = "commit"
	OperationPush         OperationName = "push"
	OperationRemoteURL    OperationName = "remote_url"
)

var operationFailureTemplates = map[OperationName]string{
	OperationClone:     "Failed to clone repository: %s",
	OperationRemove:    "Failed to remove repository: %s",
	OperationStatus:    "Failed to check repository status: %s",
	OperationAdd:       "Failed to add changes: %s",
	OperationCommit:    "Failed to commit changes: %s",
	OperationPush:      "Failed to push branch: %s",
	OperationRemoteURL: "Failed to get remote URL: %s",
}

const (
	createBranchFailureTemplateConstant = "Failed to create and checkout branch '%s': %s"
	unknownOperationTemplateConstant    = "git %s failed: %s"
)

// OperationError reports a failed git primitive with git's standard error inlined.
type OperationError struct {
	Operation OperationName
	Subject   string
	Detail    string
	Cause     error
}

func newOperationError(operation OperationName, cause error) OperationError {
	detail := cause.Error()
	var failedError execshell.CommandFailedError
	if errors.As(cause, &failedError) {
		detail = strings.TrimSpace(failedError.Result.StandardError)
	}
	return OperationError{Operation: operation, Detail: detail, Cause: cause}
}

// Error describes the failure.
func (operationError OperationError) Error() string {
	detail := operationError.Detail
	if len(detail) == 0 && operationError.Cause != nil {
		detail = operationError.Cause.Error()
	}
	if operationError.Operation == OperationCreateBranch {
		return fmt.Sprintf(createBranchFailureTemplateConstant, operationError.Subject, detail)
	}
	if template, known := operationFailureTemplates[operationError.Operation]; known {
		return fmt.Sprintf(template, detail)
	}
	return fmt.Sprintf(unknownOperationTemplateConstant, operationError.Operation, detail)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}
