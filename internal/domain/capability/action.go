package capability

// Action is a metered or capability-gated platform action.
type Action string

const (
	ActionSandboxRun       Action = "sandbox_run"
	ActionActivateWorkflow Action = "activate_workflow"
	ActionPublishModule    Action = "publish_module"
)

// IsValid checks if the action belongs to the known set.
func (a Action) IsValid() bool {
	switch a {
	case ActionSandboxRun, ActionActivateWorkflow, ActionPublishModule:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	return string(a)
}

// RequiresSandbox reports whether the action needs sandbox access.
func (a Action) RequiresSandbox() bool {
	return a == ActionSandboxRun
}
