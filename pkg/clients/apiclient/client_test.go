package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/access"
	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api", token, 5*time.Second, zap.NewNop())
}

func TestClient_AttachesBearerTokenAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	client := newTestClient(t, "tok-123", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{"id": 1, "name": "Anna", "email": "anna@example.com", "role": "USER"}`))
	})

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "Anna", user.Name)
	assert.Equal(t, model.GlobalRoleUser, user.Role)
}

func TestClient_NoTokenSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	var gotBody authRequest
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/auth/authenticate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"token": "jwt-value"}`))
	})

	token, err := client.Authenticate(context.Background(), "anna@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-value", token)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "anna@example.com", gotBody.Email)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		sentinel    error
		wantMessage string
	}{
		{"forbidden plain string", http.StatusForbidden, "Nincs jogosultságod", ErrForbidden, "Nincs jogosultságod"},
		{"unauthorized", http.StatusUnauthorized, "", ErrUnauthorized, "request failed (401 Unauthorized)"},
		{"not found json message", http.StatusNotFound, `{"message": "Event not found"}`, ErrNotFound, "Event not found"},
		{"bad request json error field", http.StatusBadRequest, `{"error": "Already a member"}`, nil, "Already a member"},
		{"bad request json without message", http.StatusBadRequest, `{"status": 400}`, nil, "request failed (400 Bad Request)"},
		{"server error html", http.StatusInternalServerError, "<html>oops</html>", nil, "request failed (500 Internal Server Error)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := client.SetApplicationStatus(context.Background(), 1, model.ApplicationStatusApproved, "")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			if tt.sentinel != nil {
				assert.True(t, errors.Is(err, tt.sentinel))
			}
			assert.False(t, errors.Is(err, &APIError{StatusCode: 418}))
		})
	}
}

func TestClient_SetApplicationStatus_Query(t *testing.T) {
	var gotMethod, gotPath, gotStatus, gotMessage string
	var hasMessage bool
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotStatus = r.URL.Query().Get("status")
		gotMessage = r.URL.Query().Get("rejectionMessage")
		_, hasMessage = r.URL.Query()["rejectionMessage"]
	})

	require.NoError(t, client.SetApplicationStatus(context.Background(), 42, model.ApplicationStatusRejected, "Capacity full"))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/applications/42/status", gotPath)
	assert.Equal(t, "REJECTED", gotStatus)
	assert.Equal(t, "Capacity full", gotMessage)

	require.NoError(t, client.SetApplicationStatus(context.Background(), 42, model.ApplicationStatusApproved, ""))
	assert.False(t, hasMessage, "empty reason must not be sent")
}

func TestClient_GetEvent_NormalizesLegacyShifts(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"id": 9,
			"title": "Sziget",
			"startTime": "2026-08-05T10:00:00",
			"endTime": "2026-08-11T22:00:00",
			"organization": {"id": 4, "name": "Helpers"},
			"shifts": [
				{"id": 1, "area": "Kitchen", "maxVolunteers": 5, "startTime": "2026-08-05T10:00:00"},
				{"id": 2, "workArea": {"name": "Desk"}}
			],
			"questions": [
				{"id": 3, "questionText": "T-shirt size?", "questionType": "dropdown", "options": "S, M, L", "isRequired": true}
			]
		}`))
	})

	event, err := client.GetEvent(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(4), event.OrgID)
	assert.Equal(t, "Helpers", event.OrgName)
	assert.Equal(t, 2026, event.Start.Year())

	require.Len(t, event.WorkAreas, 2)
	assert.Equal(t, "Kitchen", event.WorkAreas[0].Name)
	assert.Equal(t, 5, event.WorkAreas[0].Capacity)
	require.NotNil(t, event.WorkAreas[0].Start)
	assert.Nil(t, event.WorkAreas[0].End)
	assert.Equal(t, "Desk", event.WorkAreas[1].Name)

	require.Len(t, event.Questions, 1)
	q := event.Questions[0]
	assert.Equal(t, "T-shirt size?", q.Text)
	assert.Equal(t, model.QuestionTypeDropdown, q.Type)
	assert.Equal(t, []string{"S", "M", "L"}, q.Options)
	assert.True(t, q.Required)
}

func TestClient_ListEventApplications_Aliases(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/applications/event/9", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "userName": "Anna", "workAreaName": "Kitchen", "status": "PENDING", "orgId": 4, "answers": {"Q": "A"}},
			{"id": 2, "userName": "Bela", "area": "Desk", "status": "approved", "organization": {"id": 5, "name": "Other org"}}
		]`))
	})

	apps, err := client.ListEventApplications(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Kitchen", apps[0].WorkAreaName)
	assert.Equal(t, int64(4), apps[0].OrgID)
	assert.Equal(t, "A", apps[0].Answers["Q"])
	assert.Equal(t, "Desk", apps[1].WorkAreaName)
	assert.Equal(t, model.ApplicationStatusApproved, apps[1].Status)
	assert.Equal(t, int64(5), apps[1].OrgID)
	assert.Equal(t, "Other org", apps[1].OrgName)
}

func TestClient_Me_MissingRoleDefaultsToVolunteer(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 1, "role": "USER", "memberships": [
			{"orgId": 4, "orgName": "Helpers", "status": "APPROVED"},
			{"organization": {"id": 5}, "role": "organizer", "status": "PENDING"}
		]}`))
	})

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Len(t, user.Memberships, 2)
	assert.Equal(t, model.OrgRoleVolunteer, user.Memberships[0].Role)
	assert.Equal(t, int64(5), user.Memberships[1].OrgID)
	assert.Equal(t, model.OrgRoleOrganizer, user.Memberships[1].Role)
	assert.Equal(t, model.MembershipStatusPending, user.Memberships[1].Status)
}

func TestClient_Me_MissingStatusConfersNoCapabilities(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 1, "role": "USER", "memberships": [{"orgId": 1, "role": "OWNER"}]}`))
	})

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Len(t, user.Memberships, 1)
	assert.Equal(t, model.OrgRoleOwner, user.Memberships[0].Role)
	assert.Equal(t, model.MembershipStatusPending, user.Memberships[0].Status)
	assert.Equal(t, access.Capabilities{}, access.ForUser(user, 1))
}

func TestClient_Apply(t *testing.T) {
	var gotMethod, gotPath string
	var body applyRequest
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
	})

	err := client.Apply(context.Background(), 10, []int64{1, 2}, map[int64]string{3: "M"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/applications", gotPath)
	assert.Equal(t, int64(10), body.EventID)
	assert.Equal(t, []int64{1, 2}, body.PreferredWorkAreaIDs)
	assert.Equal(t, map[int64]string{3: "M"}, body.Answers)
}

func TestClient_Apply_BackendRefusal(t *testing.T) {
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "already applied"}`))
	})

	err := client.Apply(context.Background(), 10, []int64{1}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClient_TeamEndpoints(t *testing.T) {
	var calls []string
	var emailBody bulkEmailRequest
	client := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		switch r.URL.Path {
		case "/api/users/team":
			_, _ = w.Write([]byte(`[{"id": 7, "name": "Cili", "globalRole": "USER", "phoneNumber": "+36",
				"organizations": [{"orgId": 4, "orgName": "Helpers", "orgRole": "COORDINATOR"}]}]`))
		case "/api/users/team/bulk-email":
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &emailBody)
		}
	})
	ctx := context.Background()

	members, err := client.ListTeam(ctx)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "+36", members[0].Phone)
	assert.Equal(t, model.OrgRoleCoordinator, members[0].Organizations[0].Role)
	assert.Equal(t, model.MembershipStatusApproved, members[0].Organizations[0].Status)

	require.NoError(t, client.SetMemberRole(ctx, 7, 4, model.OrgRoleOrganizer))
	require.NoError(t, client.RemoveMember(ctx, 7, 4))
	require.NoError(t, client.DecideMembershipApplication(ctx, 11, model.MembershipStatusRejected, "No space"))
	require.NoError(t, client.SendTeamEmail(ctx, []int64{7}, "Hi", "Body"))

	assert.Equal(t, []string{
		"GET /api/users/team",
		"PUT /api/users/7/organizations/4/role?newRole=ORGANIZER",
		"DELETE /api/users/7/organizations/4",
		"PUT /api/organizations/applications/11?rejectionMessage=No+space&status=REJECTED",
		"POST /api/users/team/bulk-email",
	}, calls)
	assert.Equal(t, []int64{7}, emailBody.UserIDs)
	assert.Nil(t, emailBody.ApplicationIDs)
}

func TestLocalDateTime_Null(t *testing.T) {
	var payload struct {
		At LocalDateTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at": null}`), &payload))
	assert.True(t, payload.At.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"at": "yesterday"}`), &payload))
}
