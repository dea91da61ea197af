package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/bulk"
	"github.com/jakechorley/volunteer-admin/pkg/core/loader"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

func applicantBackend() *fakeBackend {
	b := festivalBackend()
	b.currentUser = volunteerID
	b.events[20] = &model.Event{ID: 20, OrgID: 2, OrgName: "Beta", Title: "Balaton Sound"}
	b.apps = append(b.apps,
		model.Application{ID: 30, EventID: 20, OrgID: 2, OrgName: "Beta", UserID: volunteerID, UserName: "Anna", WorkAreaName: "Bar", Status: model.ApplicationStatusWithdrawn},
	)
	return b
}

func TestMyApplications_GroupedByOrganization(t *testing.T) {
	groups, err := MyApplications(context.Background(), applicantBackend(), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Alpha", groups[0].Name)
	assert.Equal(t, "Beta", groups[1].Name)
	assert.Len(t, groups[1].Items, 1)
}

func TestApplicantEvent_AlreadyApplied(t *testing.T) {
	b := applicantBackend()
	ldr := loader.New(b, zap.NewNop())

	v, err := ApplicantEvent(context.Background(), ldr, zap.NewNop(), eventID)
	require.NoError(t, err)
	assert.True(t, v.AlreadyApplied)

	// a withdrawn application does not count
	v, err = ApplicantEvent(context.Background(), ldr, zap.NewNop(), 20)
	require.NoError(t, err)
	assert.False(t, v.AlreadyApplied)
}

func TestApplicant_WithdrawAndReapply(t *testing.T) {
	ctx := context.Background()
	b := applicantBackend()
	applicant := NewApplicant(b, bulk.NewCoordinator(nil, zap.NewNop(), "test", "anna@example.com"), zap.NewNop())

	_, err := applicant.Withdraw(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusWithdrawn, statusOf(t, applicant.Applications(), 1).Status)

	_, err = applicant.Reapply(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, statusOf(t, applicant.Applications(), 30).Status)

	_, err = applicant.Reapply(ctx, 30)
	assert.ErrorIs(t, err, ErrActionDisabled)

	_, err = applicant.Withdraw(ctx, 2)
	assert.ErrorIs(t, err, ErrNotFound, "someone else's application")
}

func TestApplicant_RejectionMessageOnlyForRejected(t *testing.T) {
	b := applicantBackend()
	b.apps[0].RejectionMessage = "stale"
	applicant := NewApplicant(b, bulk.NewCoordinator(nil, zap.NewNop(), "test", "anna"), zap.NewNop())
	require.NoError(t, applicant.Reload(context.Background()))

	msg, err := applicant.RejectionMessage(1)
	require.NoError(t, err)
	assert.Empty(t, msg)

	_, err = applicant.RejectionMessage(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func applyBackend() *fakeBackend {
	b := applicantBackend()
	b.events[eventID].Questions = []model.EventQuestion{
		{ID: 1, Text: "T-shirt size", Type: model.QuestionTypeDropdown, Options: []string{"S", "M", "L"}, Required: true},
		{ID: 2, Text: "Languages", Type: model.QuestionTypeCheckbox, Options: []string{"English", "German"}},
	}
	return b
}

func applyForm(areas ...string) ApplicationForm {
	return ApplicationForm{EventID: eventID, Areas: areas, Answers: map[string]string{"T-shirt size": "M"}}
}

func TestApply_ActiveApplicationBlocks(t *testing.T) {
	b := applyBackend()

	_, err := Apply(context.Background(), b, loader.New(b, zap.NewNop()), zap.NewNop(), applyForm("Kitchen"))
	assert.ErrorIs(t, err, ErrAlreadyApplied)
	assert.Nil(t, b.applied)
	assert.NotContains(t, b.calls, "apply 10 [1]")
}

func TestApply_WithdrawnApplicationDoesNotBlock(t *testing.T) {
	b := applyBackend()
	for i := range b.apps {
		if b.apps[i].ID == 1 {
			b.apps[i].Status = model.ApplicationStatusWithdrawn
		}
	}

	result, err := Apply(context.Background(), b, loader.New(b, zap.NewNop()), zap.NewNop(), applyForm("kitchen"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen"}, result.Applied)
	assert.Empty(t, result.Skipped)
	assert.Contains(t, b.calls, "apply 10 [1]")
}

func TestApply_SkipsAreasWithActiveApplication(t *testing.T) {
	b := applyBackend()

	result, err := Apply(context.Background(), b, loader.New(b, zap.NewNop()), zap.NewNop(), applyForm("Kitchen", "desk", "Desk"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Desk"}, result.Applied)
	assert.Equal(t, []string{"Kitchen"}, result.Skipped)
	assert.Contains(t, b.calls, "apply 10 [2]")
	assert.Equal(t, map[int64]string{1: "M"}, b.applied)
}

func TestApply_Answers(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		want    map[int64]string
		wantErr bool
	}{
		{"by text, option spelling restored", map[string]string{"t-shirt size": "l"}, map[int64]string{1: "L"}, false},
		{"by id", map[string]string{"1": "S"}, map[int64]string{1: "S"}, false},
		{"multiple choices", map[string]string{"T-shirt size": "M", "Languages": "german, english"}, map[int64]string{1: "M", 2: "German, English"}, false},
		{"required missing", map[string]string{"Languages": "English"}, nil, true},
		{"required blank", map[string]string{"T-shirt size": "  "}, nil, true},
		{"not an option", map[string]string{"T-shirt size": "XXL"}, nil, true},
		{"unknown question", map[string]string{"T-shirt size": "M", "Diet": "vegan"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := applyBackend()
			form := ApplicationForm{EventID: eventID, Areas: []string{"Desk"}, Answers: tt.answers}

			_, err := Apply(context.Background(), b, loader.New(b, zap.NewNop()), zap.NewNop(), form)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidApplication)
				assert.Nil(t, b.applied)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.applied)
		})
	}
}

func TestApply_WorkAreaChoice(t *testing.T) {
	b := applyBackend()
	ldr := loader.New(b, zap.NewNop())

	_, err := Apply(context.Background(), b, ldr, zap.NewNop(), applyForm())
	assert.ErrorIs(t, err, ErrInvalidApplication, "two work areas and none chosen")

	_, err = Apply(context.Background(), b, ldr, zap.NewNop(), applyForm("Bar"))
	assert.ErrorIs(t, err, ErrInvalidApplication)

	b.events[eventID].WorkAreas = b.events[eventID].WorkAreas[1:]
	result, err := Apply(context.Background(), b, ldr, zap.NewNop(), applyForm())
	require.NoError(t, err)
	assert.Equal(t, []string{"Desk"}, result.Applied)
}
