package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	startMessageTemplateConstant            = "%s %s"
	successMessageTemplateConstant          = "%s %s"
	failureMessageTemplateConstant          = "Failed to %s %s (exit code %d%s)"
	executionFailureMessageTemplateConstant = "Unable to %s %s: %s"
	standardErrorSuffixTemplateConstant     = ": %s"
	inDirectoryTemplateConstant             = "%s in %s"
	cloneSubjectTemplateConstant            = "%s into %s"
	cloneBranchSubjectTemplateConstant      = "%s (branch %s) into %s"
	commitSubjectTemplateConstant           = "changes in %s with message %q"
	pushSubjectTemplateConstant             = "%s to %s from %s"
	checkoutSubjectTemplateConstant         = "%s to branch %s"
	remoteSubjectTemplateConstant           = "%s remote URL in %s"
	genericSubjectTemplateConstant          = "%s %s"
	argumentsJoinSeparatorConstant          = " "
	flagPrefixConstant                      = "-"
	defaultWorkingDirectoryLabelConstant    = "current directory"
	unknownValueLabelConstant               = "unknown"
	unknownFailureLabelConstant             = "unknown error"
	workingTreeStatusSubjectConstant        = "working tree status"
	stagedChangesSubjectConstant            = "changes"
	defaultBranchSubjectConstant            = "default branch reference"
	currentBranchSubjectConstant            = "current branch"
	branchSubjectTemplateConstant           = "branch %s"
)

const (
	gitCloneSubcommandConstant       = "clone"
	gitStatusSubcommandConstant      = "status"
	gitCheckoutSubcommandConstant    = "checkout"
	gitAddSubcommandConstant         = "add"
	gitCommitSubcommandConstant      = "commit"
	gitPushSubcommandConstant        = "push"
	gitSymbolicRefSubcommandConstant = "symbolic-ref"
	gitBranchSubcommandConstant      = "branch"
	gitRemoteSubcommandConstant      = "remote"
	gitBranchFlagConstant            = "-b"
	gitMessageFlagConstant           = "-m"
)

// commandVerb holds the three forms a lifecycle message needs.
type commandVerb struct {
	progressive string
	past        string
	infinitive  string
}

var (
	cloneVerb    = commandVerb{progressive: "Cloning", past: "Cloned", infinitive: "clone"}
	reviewVerb   = commandVerb{progressive: "Reviewing", past: "Reviewed", infinitive: "review"}
	createVerb   = commandVerb{progressive: "Creating", past: "Created", infinitive: "create"}
	switchVerb   = commandVerb{progressive: "Switching", past: "Switched", infinitive: "switch"}
	stageVerb    = commandVerb{progressive: "Staging", past: "Staged", infinitive: "stage"}
	commitVerb   = commandVerb{progressive: "Committing", past: "Committed", infinitive: "commit"}
	pushVerb     = commandVerb{progressive: "Pushing", past: "Pushed", infinitive: "push"}
	resolveVerb  = commandVerb{progressive: "Resolving", past: "Resolved", infinitive: "resolve"}
	identifyVerb = commandVerb{progressive: "Identifying", past: "Identified", infinitive: "identify"}
	readVerb     = commandVerb{progressive: "Reading", past: "Read", infinitive: "read"}
	runVerb      = commandVerb{progressive: "Running", past: "Completed", infinitive: "run"}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	verb, subject := formatter.describe(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(startMessageTemplateConstant, verb.progressive, subject)
	case messageStageSuccess:
		return fmt.Sprintf(successMessageTemplateConstant, verb.past, subject)
	case messageStageFailure:
		return fmt.Sprintf(failureMessageTemplateConstant, verb.infinitive, subject, result.ExitCode, formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureMessageTemplateConstant, verb.infinitive, subject, describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describe(command ShellCommand) (commandVerb, string) {
	workingDirectory := describeWorkingDirectory(command.Details.WorkingDirectory)
	arguments := command.Details.Arguments

	if command.Name == CommandShell {
		return runVerb, fmt.Sprintf(inDirectoryTemplateConstant, lastArgument(arguments), workingDirectory)
	}
	if command.Name != CommandGit || len(arguments) == 0 {
		return runVerb, fmt.Sprintf(inDirectoryTemplateConstant, fmt.Sprintf(genericSubjectTemplateConstant, command.Name, strings.Join(arguments, argumentsJoinSeparatorConstant)), workingDirectory)
	}

	switch strings.TrimSpace(arguments[0]) {
	case gitCloneSubcommandConstant:
		positional := positionalArguments(arguments[1:], gitBranchFlagConstant)
		source := valueAt(positional, 0)
		target := valueAt(positional, 1)
		if branch := flagValue(arguments, gitBranchFlagConstant); len(branch) > 0 {
			return cloneVerb, fmt.Sprintf(cloneBranchSubjectTemplateConstant, source, branch, target)
		}
		return cloneVerb, fmt.Sprintf(cloneSubjectTemplateConstant, source, target)
	case gitStatusSubcommandConstant:
		return reviewVerb, fmt.Sprintf(inDirectoryTemplateConstant, workingTreeStatusSubjectConstant, workingDirectory)
	case gitCheckoutSubcommandConstant:
		if branch := flagValue(arguments, gitBranchFlagConstant); len(branch) > 0 {
			return createVerb, fmt.Sprintf(inDirectoryTemplateConstant, fmt.Sprintf(branchSubjectTemplateConstant, branch), workingDirectory)
		}
		return switchVerb, fmt.Sprintf(checkoutSubjectTemplateConstant, workingDirectory, valueAt(positionalArguments(arguments[1:]), 0))
	case gitAddSubcommandConstant:
		return stageVerb, fmt.Sprintf(inDirectoryTemplateConstant, stagedChangesSubjectConstant, workingDirectory)
	case gitCommitSubcommandConstant:
		return commitVerb, fmt.Sprintf(commitSubjectTemplateConstant, workingDirectory, flagValue(arguments, gitMessageFlagConstant))
	case gitPushSubcommandConstant:
		positional := positionalArguments(arguments[1:])
		return pushVerb, fmt.Sprintf(pushSubjectTemplateConstant, valueAt(positional, 1), valueAt(positional, 0), workingDirectory)
	case gitSymbolicRefSubcommandConstant:
		return resolveVerb, fmt.Sprintf(inDirectoryTemplateConstant, defaultBranchSubjectConstant, workingDirectory)
	case gitBranchSubcommandConstant:
		return identifyVerb, fmt.Sprintf(inDirectoryTemplateConstant, currentBranchSubjectConstant, workingDirectory)
	case gitRemoteSubcommandConstant:
		return readVerb, fmt.Sprintf(remoteSubjectTemplateConstant, valueAt(positionalArguments(arguments[1:]), 1), workingDirectory)
	default:
		return runVerb, fmt.Sprintf(inDirectoryTemplateConstant, fmt.Sprintf(genericSubjectTemplateConstant, command.Name, strings.Join(arguments, argumentsJoinSeparatorConstant)), workingDirectory)
	}
}

// positionalArguments drops flags and the values of the listed value-taking flags.
func positionalArguments(arguments []string, valueFlags ...string) []string {
	positional := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := strings.TrimSpace(arguments[index])
		if strings.HasPrefix(argument, flagPrefixConstant) {
			for _, valueFlag := range valueFlags {
				if argument == valueFlag {
					index++
					break
				}
			}
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func flagValue(arguments []string, flag string) string {
	for index := 0; index+1 < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return ""
}

func valueAt(values []string, index int) string {
	if index < len(values) && len(values[index]) > 0 {
		return values[index]
	}
	return unknownValueLabelConstant
}

func lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return unknownValueLabelConstant
	}
	return arguments[len(arguments)-1]
}

func describeWorkingDirectory(workingDirectory string) string {
	trimmed := strings.TrimSpace(workingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureLabelConstant
	}
	return failure.Error()
}
