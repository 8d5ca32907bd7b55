package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/girder-hq/girder/internal/domain/capability"
	"github.com/girder-hq/girder/internal/domain/subscription"
	vo "github.com/girder-hq/girder/internal/domain/subscription/valueobjects"
	"github.com/girder-hq/girder/internal/domain/usage"
	apperrors "github.com/girder-hq/girder/internal/shared/errors"
)

func freeSubscription(t *testing.T) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(42, "sub_freetier0001", vo.TierFree, nil)
	require.NoError(t, err)
	return sub
}

func newAdmitFixture(t *testing.T, snapshot *usage.Snapshot) (*AdmitActionUseCase, *mockUsageRepository, *mockSubscriptionProvider) {
	t.Helper()
	usageRepo := new(mockUsageRepository)
	subs := new(mockSubscriptionProvider)
	subs.On("EnsureForActor", mock.Anything, mock.Anything).Return(freeSubscription(t), nil).Maybe()
	if snapshot != nil {
		usageRepo.On("SnapshotForActor", mock.Anything, mock.Anything).Return(snapshot, nil).Maybe()
	}
	return NewAdmitActionUseCase(usageRepo, subs, new(mockLogger)), usageRepo, subs
}

func TestAdmitAction_RoleRestricted(t *testing.T) {
	t.Run("sandbox denied without access", func(t *testing.T) {
		uc, _, _ := newAdmitFixture(t, nil)

		result, err := uc.Execute(context.Background(), AdmitActionCommand{
			ActorID: 42,
			Role:    capability.RoleViewer,
			Action:  capability.ActionSandboxRun,
		})

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, DenialRoleRestricted, result.Denial.Reason)
	})

	t.Run("publish denied without publish rights", func(t *testing.T) {
		uc, _, _ := newAdmitFixture(t, nil)

		result, err := uc.Execute(context.Background(), AdmitActionCommand{
			ActorID: 42,
			Role:    capability.RoleCompanyAdmin,
			Action:  capability.ActionPublishModule,
		})

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, DenialRoleRestricted, result.Denial.Reason)
	})

	t.Run("developer publish admits regardless of usage", func(t *testing.T) {
		uc, _, _ := newAdmitFixture(t, nil)

		result, err := uc.Execute(context.Background(), AdmitActionCommand{
			ActorID: 42,
			Role:    capability.RoleDeveloper,
			Action:  capability.ActionPublishModule,
		})

		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("unknown role denied by default", func(t *testing.T) {
		uc, _, _ := newAdmitFixture(t, nil)

		result, err := uc.Execute(context.Background(), AdmitActionCommand{
			ActorID: 42,
			Role:    capability.Role("superuser"),
			Action:  capability.ActionSandboxRun,
		})

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, DenialRoleRestricted, result.Denial.Reason)
	})
}

func TestAdmitAction_QuotaBoundaries(t *testing.T) {
	// company_admin allows 15 sandbox runs per day
	tests := []struct {
		name      string
		runsToday int
		allowed   bool
	}{
		{"one below limit admits", 14, true},
		{"at limit denies", 15, false},
		{"over limit denies", 16, false},
		{"zero usage admits", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _, _ := newAdmitFixture(t, &usage.Snapshot{SandboxRunsToday: tt.runsToday})

			result, err := uc.Execute(context.Background(), AdmitActionCommand{
				ActorID: 42,
				Role:    capability.RoleCompanyAdmin,
				Action:  capability.ActionSandboxRun,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.allowed, result.Allowed)
			if !tt.allowed {
				assert.Equal(t, DenialQuotaExceeded, result.Denial.Reason)
				assert.Equal(t, tt.runsToday, result.Denial.Used)
				assert.Equal(t, 15, result.Denial.Limit)
			}
		})
	}
}

func TestAdmitAction_UnlimitedNeverDenies(t *testing.T) {
	for _, runs := range []int{0, 1000, 1 << 20} {
		uc, _, _ := newAdmitFixture(t, &usage.Snapshot{SandboxRunsToday: runs, ActiveWorkflows: runs})

		result, err := uc.Execute(context.Background(), AdmitActionCommand{
			ActorID: 42,
			Role:    capability.RolePlatformAdmin,
			Action:  capability.ActionSandboxRun,
		})
		require.NoError(t, err)
		assert.True(t, result.Allowed)

		result, err = uc.Execute(context.Background(), AdmitActionCommand{
			ActorID: 42,
			Role:    capability.RolePlatformAdmin,
			Action:  capability.ActionActivateWorkflow,
		})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestAdmitAction_WorkflowQuota(t *testing.T) {
	uc, _, _ := newAdmitFixture(t, &usage.Snapshot{ActiveWorkflows: 25})

	result, err := uc.Execute(context.Background(), AdmitActionCommand{
		ActorID: 42,
		Role:    capability.RoleCompanyAdmin,
		Action:  capability.ActionActivateWorkflow,
	})

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, DenialQuotaExceeded, result.Denial.Reason)
	assert.Equal(t, 25, result.Denial.Used)
	assert.Equal(t, 25, result.Denial.Limit)
}

func TestAdmitAction_UpstreamFailureIsNotADenial(t *testing.T) {
	usageRepo := new(mockUsageRepository)
	subs := new(mockSubscriptionProvider)
	subs.On("EnsureForActor", mock.Anything, uint(42)).Return(freeSubscription(t), nil)
	usageRepo.On("SnapshotForActor", mock.Anything, uint(42)).Return(nil, errors.New("connection refused"))

	uc := NewAdmitActionUseCase(usageRepo, subs, new(mockLogger))

	result, err := uc.Execute(context.Background(), AdmitActionCommand{
		ActorID: 42,
		Role:    capability.RoleCompanyAdmin,
		Action:  capability.ActionSandboxRun,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsUnavailableError(err))
}

func TestAdmitAction_Validation(t *testing.T) {
	uc, _, _ := newAdmitFixture(t, nil)

	_, err := uc.Execute(context.Background(), AdmitActionCommand{
		ActorID: 0,
		Role:    capability.RoleDeveloper,
		Action:  capability.ActionSandboxRun,
	})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), AdmitActionCommand{
		ActorID: 42,
		Role:    capability.RoleDeveloper,
		Action:  capability.Action("delete_everything"),
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestAdmitAction_LazilyCreatesSubscription(t *testing.T) {
	usageRepo := new(mockUsageRepository)
	subs := new(mockSubscriptionProvider)
	subs.On("EnsureForActor", mock.Anything, uint(42)).Return(freeSubscription(t), nil).Once()
	usageRepo.On("SnapshotForActor", mock.Anything, uint(42)).Return(usage.Zero(), nil)

	uc := NewAdmitActionUseCase(usageRepo, subs, new(mockLogger))

	_, err := uc.Execute(context.Background(), AdmitActionCommand{
		ActorID: 42,
		Role:    capability.RoleCompanyAdmin,
		Action:  capability.ActionSandboxRun,
	})

	require.NoError(t, err)
	subs.AssertExpectations(t)
}
