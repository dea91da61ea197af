package commands

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

func inputApp(input string) *AppContext {
	return &AppContext{Input: bufio.NewScanner(strings.NewReader(input))}
}

func TestStatusReason_RejectedPromptsForMessage(t *testing.T) {
	cmd := SetStatusCmd(inputApp(""))
	var out bytes.Buffer
	cmd.SetOut(&out)
	app := inputApp("Event is full\n")

	reason, err := statusReason(cmd, app, model.ApplicationStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, "Event is full", reason)
	assert.Contains(t, out.String(), "Rejection reason")
}

func TestStatusReason_Flags(t *testing.T) {
	tests := []struct {
		name   string
		status model.ApplicationStatus
		flag   string
		value  string
		want   string
	}{
		{"reason flag", model.ApplicationStatusRejected, "reason", "  Too late ", "Too late"},
		{"no reason", model.ApplicationStatusRejected, "no-reason", "true", ""},
		{"yes skips the prompt", model.ApplicationStatusRejected, "yes", "true", ""},
		{"other statuses carry no message", model.ApplicationStatusApproved, "reason", "ignored", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := SetStatusCmd(inputApp(""))
			require.NoError(t, cmd.Flags().Set(tt.flag, tt.value))
			// a prompt would consume this line
			app := inputApp("unexpected\n")

			reason, err := statusReason(cmd, app, tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reason)
			assert.True(t, app.Input.Scan(), "input must be left unread")
		})
	}
}

func TestApplicationForm(t *testing.T) {
	cmd := ApplyCmd(inputApp(""))
	require.NoError(t, cmd.Flags().Set("area", "Kitchen"))
	require.NoError(t, cmd.Flags().Set("area", "Info Desk"))
	require.NoError(t, cmd.Flags().Set("answer", "T-shirt size=M"))
	require.NoError(t, cmd.Flags().Set("answer", " Note = a=b"))

	form, err := applicationForm(cmd, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), form.EventID)
	assert.Equal(t, []string{"Kitchen", "Info Desk"}, form.Areas)
	assert.Equal(t, map[string]string{"T-shirt size": "M", "Note": " a=b"}, form.Answers)
}

func TestApplicationForm_MalformedAnswer(t *testing.T) {
	for _, answer := range []string{"no separator", "=value"} {
		cmd := ApplyCmd(inputApp(""))
		require.NoError(t, cmd.Flags().Set("answer", answer))

		_, err := applicationForm(cmd, 10)
		assert.Error(t, err, answer)
	}
}
