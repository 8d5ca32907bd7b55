package capability

// Unlimited marks a quota field with no ceiling.
const Unlimited = -1

// Policy is the static capability set attached to a role. Quota fields use
// Unlimited (-1) for no ceiling; 0 means the action is never allowed.
type Policy struct {
	CanAccessSandbox     bool
	CanPublishModules    bool
	MaxSandboxRunsPerDay int
	MaxActiveApps        int
	MaxActiveWorkflows   int
}

// denyAll is the policy resolved for unknown roles: every capability off,
// every quota zero.
var denyAll = Policy{}

// policies is the closed role table, built once at package load. Mutating it
// at runtime is not supported.
var policies = map[Role]Policy{
	RolePlatformAdmin: {
		CanAccessSandbox:     true,
		CanPublishModules:    true,
		MaxSandboxRunsPerDay: Unlimited,
		MaxActiveApps:        Unlimited,
		MaxActiveWorkflows:   Unlimited,
	},
	RoleDeveloper: {
		CanAccessSandbox:     true,
		CanPublishModules:    true,
		MaxSandboxRunsPerDay: 100,
		MaxActiveApps:        20,
		MaxActiveWorkflows:   50,
	},
	RoleCompanyAdmin: {
		CanAccessSandbox:     true,
		CanPublishModules:    false,
		MaxSandboxRunsPerDay: 15,
		MaxActiveApps:        10,
		MaxActiveWorkflows:   25,
	},
	RoleProjectManager: {
		CanAccessSandbox:     false,
		CanPublishModules:    false,
		MaxSandboxRunsPerDay: 0,
		MaxActiveApps:        5,
		MaxActiveWorkflows:   10,
	},
	RoleViewer: {},
}

// Resolve maps a role to its capability policy. Unknown roles resolve to the
// deny-all policy rather than failing. Pure and total; no I/O.
func Resolve(role Role) Policy {
	if policy, ok := policies[role]; ok {
		return policy
	}
	return denyAll
}

// IsUnlimited reports whether a quota field means "no ceiling".
func IsUnlimited(limit int) bool {
	return limit < 0
}
