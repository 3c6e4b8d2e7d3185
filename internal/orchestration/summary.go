package orchestration

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/temirov/repos/internal/repos/shared"
)

const (
	allOperationsFailedTemplateConstant = "All %s operations failed. First error: %v"
	completedSummaryTemplateConstant    = "Completed with %d successful, %d failed\n"
	tableOutputTemplateConstant         = "%s"
	tableHeaderRepositoryConstant       = "REPOSITORY"
	tableHeaderStatusConstant           = "STATUS"
	tableHeaderDetailConstant           = "DETAIL"
	statusSucceededConstant             = "ok"
	statusFailedConstant                = "failed"
)

// RepositoryResult records the outcome of one repository.
type RepositoryResult struct {
	Name   string
	Detail string
	Err    error
}

// Succeeded reports whether the repository completed without error.
func (result RepositoryResult) Succeeded() bool {
	return result.Err == nil
}

// Summary aggregates results in selection order.
type Summary struct {
	Operation string
	Results   []RepositoryResult
}

// Successful counts repositories without an error.
func (summary Summary) Successful() int {
	successful := 0
	for _, result := range summary.Results {
		if result.Succeeded() {
			successful++
		}
	}
	return successful
}

// Failed counts repositories with an error.
func (summary Summary) Failed() int {
	return len(summary.Results) - summary.Successful()
}

// Err returns AllOperationsFailedError when at least one repository ran and none succeeded.
func (summary Summary) Err() error {
	if len(summary.Results) == 0 || summary.Successful() > 0 {
		return nil
	}
	return AllOperationsFailedError{Operation: summary.Operation, FirstError: summary.Results[0].Err}
}

// Render writes the count line and the per-repository table.
func (summary Summary) Render(reporter shared.Reporter) {
	if summary.Failed() > 0 {
		reporter.Printf(completedSummaryTemplateConstant, summary.Successful(), summary.Failed())
	}

	var tableBuffer bytes.Buffer
	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{tableHeaderRepositoryConstant, tableHeaderStatusConstant, tableHeaderDetailConstant})
	table.SetAutoWrapText(false)
	for _, result := range summary.Results {
		status := statusSucceededConstant
		detail := result.Detail
		if !result.Succeeded() {
			status = statusFailedConstant
			detail = result.Err.Error()
		}
		table.Append([]string{result.Name, status, detail})
	}
	table.Render()
	reporter.Printf(tableOutputTemplateConstant, tableBuffer.String())
}

// AllOperationsFailedError reports that every selected repository failed.
type AllOperationsFailedError struct {
	Operation  string
	FirstError error
}

// Error includes the first repository's failure.
func (failedError AllOperationsFailedError) Error() string {
	return fmt.Sprintf(allOperationsFailedTemplateConstant, failedError.Operation, failedError.FirstError)
}

// Unwrap exposes the first repository's failure.
func (failedError AllOperationsFailedError) Unwrap() error {
	return failedError.FirstError
}
