package usecases

import (
	"fmt"

	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/domain/subscription"
	"github.com/girder-hq/girder/internal/domain/usage"
	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
)

// GuardrailStatus grades remaining capacity against fixed thresholds.
type GuardrailStatus string

const (
	GuardrailClear   GuardrailStatus = "clear"
	GuardrailWarning GuardrailStatus = "warning"
	GuardrailBlocked GuardrailStatus = "blocked"
)

// warningThreshold is the remaining-capacity level at which a guardrail
// flips from clear to warning.
const warningThreshold = 2

// QuickAction is a user-facing action with its availability.
type QuickAction struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

// Guardrail reports the state of one quota dimension.
type Guardrail struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Status    GuardrailStatus `json:"status"`
	Used      int             `json:"used"`
	Limit     int             `json:"limit"`
	Remaining int             `json:"remaining"`
}

// Program is an upsell prompt gated on the same entitlement checks.
type Program struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Eligible    bool   `json:"eligible"`
}

// EntitlementView is the read-only projection consumed by the UI shell.
type EntitlementView struct {
	QuickActions []QuickAction `json:"quick_actions"`
	Guardrails   []Guardrail   `json:"guardrails"`
	Programs     []Program     `json:"programs"`
}

// Present derives the entitlement view from its four authoritative inputs.
// Pure and deterministic: no persistence, no I/O, no clock.
func Present(
	role capability.Role,
	policy capability.Policy,
	snapshot *usage.Snapshot,
	sub *subscription.Subscription,
) *EntitlementView {
	if snapshot == nil {
		snapshot = usage.Zero()
	}

	return &EntitlementView{
		QuickActions: presentQuickActions(role, policy, snapshot, sub),
		Guardrails:   presentGuardrails(policy, snapshot, sub),
		Programs:     presentPrograms(policy, snapshot, sub),
	}
}

func presentQuickActions(
	role capability.Role,
	policy capability.Policy,
	snapshot *usage.Snapshot,
	sub *subscription.Subscription,
) []QuickAction {
	lifecycleReason := ""
	if sub != nil && !sub.Status().CanUseService() {
		lifecycleReason = fmt.Sprintf("subscription is %s", sub.Status())
	}

	runSandbox := QuickAction{Key: "run_sandbox", Label: "Run in sandbox", Enabled: true}
	switch {
	case !policy.CanAccessSandbox:
		runSandbox.Enabled = false
		runSandbox.Reason = fmt.Sprintf("role %s has no sandbox access", role)
	case lifecycleReason != "":
		runSandbox.Enabled = false
		runSandbox.Reason = lifecycleReason
	case !capability.IsUnlimited(policy.MaxSandboxRunsPerDay) && snapshot.SandboxRunsToday >= policy.MaxSandboxRunsPerDay:
		runSandbox.Enabled = false
		runSandbox.Reason = fmt.Sprintf("daily sandbox run limit reached (%d/%d)", snapshot.SandboxRunsToday, policy.MaxSandboxRunsPerDay)
	}

	activateWorkflow := QuickAction{Key: "activate_workflow", Label: "Activate workflow", Enabled: true}
	switch {
	case policy.MaxActiveWorkflows == 0:
		activateWorkflow.Enabled = false
		activateWorkflow.Reason = fmt.Sprintf("role %s cannot activate workflows", role)
	case lifecycleReason != "":
		activateWorkflow.Enabled = false
		activateWorkflow.Reason = lifecycleReason
	case !capability.IsUnlimited(policy.MaxActiveWorkflows) && snapshot.ActiveWorkflows >= policy.MaxActiveWorkflows:
		activateWorkflow.Enabled = false
		activateWorkflow.Reason = fmt.Sprintf("active workflow limit reached (%d/%d)", snapshot.ActiveWorkflows, policy.MaxActiveWorkflows)
	}

	publishModule := QuickAction{Key: "publish_module", Label: "Publish module", Enabled: true}
	if !policy.CanPublishModules {
		publishModule.Enabled = false
		publishModule.Reason = fmt.Sprintf("role %s cannot publish modules", role)
	}

	return []QuickAction{runSandbox, activateWorkflow, publishModule}
}

func presentGuardrails(
	policy capability.Policy,
	snapshot *usage.Snapshot,
	sub *subscription.Subscription,
) []Guardrail {
	guardrails := []Guardrail{
		gradeGuardrail("sandbox_runs", "Sandbox runs today", snapshot.SandboxRunsToday, policy.MaxSandboxRunsPerDay),
		gradeGuardrail("active_apps", "Active apps", snapshot.ActiveApps, policy.MaxActiveApps),
		gradeGuardrail("active_workflows", "Active workflows", snapshot.ActiveWorkflows, policy.MaxActiveWorkflows),
	}

	if sub != nil {
		guardrails = append(guardrails, gradeGuardrail(
			"api_requests", "API requests this period",
			sub.APIRequestsUsed(), sub.APIRequestsLimit(),
		))
	}

	return guardrails
}

// gradeGuardrail compares remaining capacity to fixed thresholds: blocked at
// zero remaining, warning at <= warningThreshold, clear otherwise. Unlimited
// quotas are always clear.
func gradeGuardrail(key, label string, used, limit int) Guardrail {
	g := Guardrail{Key: key, Label: label, Used: used, Limit: limit}

	if capability.IsUnlimited(limit) {
		g.Status = GuardrailClear
		g.Remaining = capability.Unlimited
		return g
	}

	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	g.Remaining = remaining

	switch {
	case remaining == 0:
		g.Status = GuardrailBlocked
	case remaining <= warningThreshold:
		g.Status = GuardrailWarning
	default:
		g.Status = GuardrailClear
	}
	return g
}

func presentPrograms(
	policy capability.Policy,
	snapshot *usage.Snapshot,
	sub *subscription.Subscription,
) []Program {
	anyPressure := false
	for _, g := range presentGuardrails(policy, snapshot, sub) {
		if g.Status != GuardrailClear {
			anyPressure = true
			break
		}
	}

	tier := vo.TierFree
	if sub != nil {
		tier = sub.Tier()
	}

	return []Program{
		{
			Key:         "upgrade_tier",
			Title:       "Upgrade your plan",
			Description: "Raise API request and resource ceilings with a higher tier.",
			Eligible:    tier != vo.TierEnterprise && anyPressure,
		},
		{
			Key:         "developer_program",
			Title:       "Join the developer program",
			Description: "Get module publishing rights for your marketplace listings.",
			Eligible:    !policy.CanPublishModules,
		},
		{
			Key:         "sandbox_onboarding",
			Title:       "Try the sandbox",
			Description: "Run your first module build in an isolated sandbox.",
			Eligible:    policy.CanAccessSandbox && snapshot.SandboxRunsToday == 0,
		},
	}
}
