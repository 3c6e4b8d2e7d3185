package runner

const (
	// NoExitCodeConstant marks a process that ended without reporting an exit status.
	NoExitCodeConstant = -1

	exitCodeSuccessConstant             = 0
	exitCodeGeneralErrorConstant        = 1
	exitCodeBuiltinMisuseConstant       = 2
	exitCodeCannotExecuteConstant       = 126
	exitCodeNotFoundConstant            = 127
	exitCodeInvalidExitArgumentConstant = 128
	exitCodeInterruptedConstant         = 130
	exitCodeFirstSignalConstant         = 131
	exitCodeLastSignalConstant          = 255
)

var exitCodeDescriptions = map[int]string{
	exitCodeSuccessConstant:             "success",
	exitCodeGeneralErrorConstant:        "general error",
	exitCodeBuiltinMisuseConstant:       "shell builtin misuse",
	exitCodeCannotExecuteConstant:       "command invoked cannot execute",
	exitCodeNotFoundConstant:            "command not found",
	exitCodeInvalidExitArgumentConstant: "invalid argument to exit",
	exitCodeInterruptedConstant:         "script terminated by Control-C",
}

const (
	signalDescriptionConstant  = "terminated by signal"
	genericDescriptionConstant = "error"
)

// ClassifyExitCode maps a process exit code to its conventional shell meaning.
func ClassifyExitCode(exitCode int) string {
	if description, known := exitCodeDescriptions[exitCode]; known {
		return description
	}
	if exitCode >= exitCodeFirstSignalConstant && exitCode <= exitCodeLastSignalConstant {
		return signalDescriptionConstant
	}
	return genericDescriptionConstant
}
