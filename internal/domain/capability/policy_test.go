package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_KnownRoles(t *testing.T) {
	tests := []struct {
		name            string
		role            Role
		wantSandbox     bool
		wantPublish     bool
		wantRunsPerDay  int
		wantActiveApps  int
		wantActiveFlows int
	}{
		{
			name:            "platform admin is unlimited",
			role:            RolePlatformAdmin,
			wantSandbox:     true,
			wantPublish:     true,
			wantRunsPerDay:  Unlimited,
			wantActiveApps:  Unlimited,
			wantActiveFlows: Unlimited,
		},
		{
			name:            "developer can publish",
			role:            RoleDeveloper,
			wantSandbox:     true,
			wantPublish:     true,
			wantRunsPerDay:  100,
			wantActiveApps:  20,
			wantActiveFlows: 50,
		},
		{
			name:            "company admin cannot publish",
			role:            RoleCompanyAdmin,
			wantSandbox:     true,
			wantPublish:     false,
			wantRunsPerDay:  15,
			wantActiveApps:  10,
			wantActiveFlows: 25,
		},
		{
			name:            "project manager has no sandbox access",
			role:            RoleProjectManager,
			wantSandbox:     false,
			wantPublish:     false,
			wantRunsPerDay:  0,
			wantActiveApps:  5,
			wantActiveFlows: 10,
		},
		{
			name: "viewer has nothing",
			role: RoleViewer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := Resolve(tt.role)

			assert.Equal(t, tt.wantSandbox, policy.CanAccessSandbox)
			assert.Equal(t, tt.wantPublish, policy.CanPublishModules)
			assert.Equal(t, tt.wantRunsPerDay, policy.MaxSandboxRunsPerDay)
			assert.Equal(t, tt.wantActiveApps, policy.MaxActiveApps)
			assert.Equal(t, tt.wantActiveFlows, policy.MaxActiveWorkflows)
		})
	}
}

func TestResolve_UnknownRoleDeniesByDefault(t *testing.T) {
	for _, role := range []Role{"", "superuser", "COMPANY_ADMIN", "admin "} {
		policy := Resolve(role)

		assert.False(t, policy.CanAccessSandbox)
		assert.False(t, policy.CanPublishModules)
		assert.Equal(t, 0, policy.MaxSandboxRunsPerDay)
		assert.Equal(t, 0, policy.MaxActiveApps)
		assert.Equal(t, 0, policy.MaxActiveWorkflows)
	}
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleDeveloper.IsValid())
	assert.True(t, RoleViewer.IsValid())
	assert.False(t, Role("superuser").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestIsUnlimited(t *testing.T) {
	assert.True(t, IsUnlimited(Unlimited))
	assert.True(t, IsUnlimited(-5))
	assert.False(t, IsUnlimited(0))
	assert.False(t, IsUnlimited(15))
}
