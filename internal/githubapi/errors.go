package githubapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v55/github"
)

const (
	tokenRequiredMessageConstant            = "GitHub token is required for creating pull requests"
	apiErrorTemplateConstant                = "GitHub API error (%d): %s"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	invalidInputErrorTemplateConstant       = "%s: %s"
	errorDetailSeparatorConstant            = "; "
)

// ErrTokenRequired indicates an authenticated-only call was made without a token.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// OperationName identifies a client call for error reporting.
type OperationName string

// Client operations.
const (
	OperationCreatePullRequest OperationName = "CreatePullRequest"
	OperationGetPullRequest    OperationName = "GetPullRequest"
	OperationListPullRequests  OperationName = "ListPullRequests"
	OperationGetRepository     OperationName = "GetRepository"
	OperationListTopics        OperationName = "ListTopics"
	OperationGetLatestRelease  OperationName = "GetLatestRelease"
	OperationListReleases      OperationName = "ListReleases"
)

// APIError reports a non-2xx response.
type APIError struct {
	Operation  OperationName
	StatusCode int
	Body       string
}

// Error describes the response.
func (apiError APIError) Error() string {
	return fmt.Sprintf(apiErrorTemplateConstant, apiError.StatusCode, apiError.Body)
}

// OperationError wraps transport failures that produced no usable response.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// classifyError turns go-github failures into APIError when the server responded.
func classifyError(operation OperationName, cause error) error {
	var errorResponse *github.ErrorResponse
	if errors.As(cause, &errorResponse) && errorResponse.Response != nil {
		body := responseBody(errorResponse.Response)
		if len(body) == 0 {
			body = describeErrorResponse(errorResponse)
		}
		return APIError{Operation: operation, StatusCode: errorResponse.Response.StatusCode, Body: body}
	}

	var rateLimitError *github.RateLimitError
	if errors.As(cause, &rateLimitError) && rateLimitError.Response != nil {
		body := responseBody(rateLimitError.Response)
		if len(body) == 0 {
			body = rateLimitError.Message
		}
		return APIError{Operation: operation, StatusCode: rateLimitError.Response.StatusCode, Body: body}
	}

	return OperationError{Operation: operation, Cause: cause}
}

// responseBody returns the raw error payload. go-github re-populates the body after decoding it,
// so the bytes are restored for any later reader.
func responseBody(response *http.Response) string {
	if response.Body == nil {
		return ""
	}
	data, readError := io.ReadAll(response.Body)
	response.Body = io.NopCloser(bytes.NewReader(data))
	if readError != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func describeErrorResponse(errorResponse *github.ErrorResponse) string {
	details := []string{}
	if trimmedMessage := strings.TrimSpace(errorResponse.Message); len(trimmedMessage) > 0 {
		details = append(details, trimmedMessage)
	}
	for _, detail := range errorResponse.Errors {
		if trimmedDetail := strings.TrimSpace(detail.Message); len(trimmedDetail) > 0 {
			details = append(details, trimmedDetail)
		}
	}
	return strings.Join(details, errorDetailSeparatorConstant)
}
