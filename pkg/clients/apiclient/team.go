package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// ListTeam fetches the members visible to the caller
func (c *Client) ListTeam(ctx context.Context) ([]model.TeamMember, error) {
	var dtos []teamMemberDTO
	if err := c.do(ctx, http.MethodGet, "/users/team", nil, nil, &dtos); err != nil {
		return nil, err
	}
	members := make([]model.TeamMember, 0, len(dtos))
	for _, dto := range dtos {
		members = append(members, normalizeTeamMember(dto))
	}
	return members, nil
}

// PendingMembershipApplications fetches join requests for organizations the caller leads
func (c *Client) PendingMembershipApplications(ctx context.Context) ([]model.MembershipApplication, error) {
	var dtos []applicationDTO
	if err := c.do(ctx, http.MethodGet, "/organizations/applications/pending", nil, nil, &dtos); err != nil {
		return nil, err
	}
	pending := make([]model.MembershipApplication, 0, len(dtos))
	for _, dto := range dtos {
		pending = append(pending, normalizeMembershipApplication(dto))
	}
	return pending, nil
}

// DecideMembershipApplication approves or rejects a join request
func (c *Client) DecideMembershipApplication(ctx context.Context, membershipID int64, status model.MembershipStatus, rejectionMessage string) error {
	query := url.Values{"status": {string(status)}}
	if rejectionMessage != "" {
		query.Set("rejectionMessage", rejectionMessage)
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/organizations/applications/%d", membershipID), query, nil, nil)
}

// SetMemberRole changes a member's role within one organization
func (c *Client) SetMemberRole(ctx context.Context, userID, orgID int64, role model.OrgRole) error {
	query := url.Values{"newRole": {string(role)}}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d/organizations/%d/role", userID, orgID), query, nil, nil)
}

// RemoveMember removes a member from one organization
func (c *Client) RemoveMember(ctx context.Context, userID, orgID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/organizations/%d", userID, orgID), nil, nil, nil)
}

// SendTeamEmail asks the backend to BCC the given users
func (c *Client) SendTeamEmail(ctx context.Context, userIDs []int64, subject, message string) error {
	body := bulkEmailRequest{UserIDs: userIDs, Subject: subject, Message: message}
	return c.do(ctx, http.MethodPost, "/users/team/bulk-email", nil, body, nil)
}

// ListOrganizations fetches every organization
func (c *Client) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	var dtos []organizationDTO
	if err := c.do(ctx, http.MethodGet, "/organizations", nil, nil, &dtos); err != nil {
		return nil, err
	}
	orgs := make([]model.Organization, 0, len(dtos))
	for _, dto := range dtos {
		orgs = append(orgs, model.Organization{
			ID:          dto.ID,
			Name:        dto.Name,
			Address:     dto.Address,
			Description: dto.Description,
			Email:       dto.Email,
			Phone:       dto.Phone,
		})
	}
	return orgs, nil
}
