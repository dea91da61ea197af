package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// GetEvent fetches an event with its work areas and questions
func (c *Client) GetEvent(ctx context.Context, eventID int64) (*model.Event, error) {
	var dto eventDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d", eventID), nil, nil, &dto); err != nil {
		return nil, err
	}
	return normalizeEvent(dto), nil
}

// ListEventApplications fetches every application submitted to an event
func (c *Client) ListEventApplications(ctx context.Context, eventID int64) ([]model.Application, error) {
	var dtos []applicationDTO
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/applications/event/%d", eventID), nil, nil, &dtos); err != nil {
		return nil, err
	}
	return normalizeApplications(dtos), nil
}

// MyApplications fetches the caller's own applications
func (c *Client) MyApplications(ctx context.Context) ([]model.Application, error) {
	var dtos []applicationDTO
	if err := c.do(ctx, http.MethodGet, "/applications/my", nil, nil, &dtos); err != nil {
		return nil, err
	}
	return normalizeApplications(dtos), nil
}

// Apply submits the caller's application to an event: one application per preferred work area.
// answers are keyed by question id.
func (c *Client) Apply(ctx context.Context, eventID int64, workAreaIDs []int64, answers map[int64]string) error {
	body := applyRequest{EventID: eventID, PreferredWorkAreaIDs: workAreaIDs, Answers: answers}
	return c.do(ctx, http.MethodPost, "/applications", nil, body, nil)
}

// SetApplicationStatus transitions a single application. rejectionMessage is only sent when non-empty.
func (c *Client) SetApplicationStatus(ctx context.Context, applicationID int64, status model.ApplicationStatus, rejectionMessage string) error {
	query := url.Values{"status": {string(status)}}
	if rejectionMessage != "" {
		query.Set("rejectionMessage", rejectionMessage)
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d/status", applicationID), query, nil, nil)
}

// WithdrawApplication withdraws one of the caller's applications
func (c *Client) WithdrawApplication(ctx context.Context, applicationID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/applications/%d", applicationID), nil, nil, nil)
}

// SetApplicationNote stores the private administrator note
func (c *Client) SetApplicationNote(ctx context.Context, applicationID int64, note string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d/note", applicationID), nil, noteRequest{Note: note}, nil)
}

// SendApplicationsEmail asks the backend to BCC every applicant in applicationIDs
func (c *Client) SendApplicationsEmail(ctx context.Context, applicationIDs []int64, subject, message string) error {
	body := bulkEmailRequest{ApplicationIDs: applicationIDs, Subject: subject, Message: message}
	return c.do(ctx, http.MethodPost, "/applications/bulk-email", nil, body, nil)
}
