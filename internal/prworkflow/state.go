package prworkflow

// State names a point the workflow reached.
type State int

// Workflow states in the order they are reached.
const (
	StateStarted State = iota
	StateNoChanges
	StateBranchCreated
	StateCommitted
	StatePushed
	StateBaseBranchResolved
	StatePullRequestCreated
)

var stateNames = map[State]string{
	StateStarted:            "started",
	StateNoChanges:          "no_changes",
	StateBranchCreated:      "branch_created",
	StateCommitted:          "committed",
	StatePushed:             "pushed",
	StateBaseBranchResolved: "base_branch_resolved",
	StatePullRequestCreated: "pull_request_created",
}

// String returns the state label used in logs.
func (state State) String() string {
	if name, known := stateNames[state]; known {
		return name
	}
	return "unknown"
}

// Outcome reports how far the workflow progressed for one repository.
type Outcome struct {
	FinalState     State
	BranchName     string
	BaseBranch     string
	PullRequestURL string
}
