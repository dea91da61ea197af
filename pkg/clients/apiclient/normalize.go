package apiclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// firstNonEmpty returns the first value that is not blank
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstID(ids ...*int64) int64 {
	for _, id := range ids {
		if id != nil {
			return *id
		}
	}
	return 0
}

func orgRefID(ref *orgRefDTO) *int64 {
	if ref == nil {
		return nil
	}
	return ref.ID
}

func orgRefName(ref *orgRefDTO) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

func normalizeOrgRole(s string) model.OrgRole {
	role := model.OrgRole(strings.ToUpper(strings.TrimSpace(s)))
	if role == "" {
		return model.OrgRoleVolunteer
	}
	return role
}

func normalizeGlobalRole(s string) model.GlobalRole {
	role := model.GlobalRole(strings.ToUpper(strings.TrimSpace(s)))
	if role == "" {
		return model.GlobalRoleUser
	}
	return role
}

func normalizeWorkArea(dto workAreaDTO, index int) model.WorkArea {
	nestedName := ""
	if dto.WorkArea != nil {
		nestedName = firstNonEmpty(dto.WorkArea.Name, dto.WorkArea.Area)
	}

	wa := model.WorkArea{
		ID:          dto.ID,
		Name:        firstNonEmpty(dto.Name, dto.Area, nestedName, fmt.Sprintf("Area %d", index+1)),
		Description: dto.Description,
	}
	switch {
	case dto.Capacity != nil:
		wa.Capacity = *dto.Capacity
	case dto.MaxVolunteers != nil:
		wa.Capacity = *dto.MaxVolunteers
	}
	if dto.StartTime != nil && !dto.StartTime.IsZero() {
		start := dto.StartTime.Time
		wa.Start = &start
	}
	if dto.EndTime != nil && !dto.EndTime.IsZero() {
		end := dto.EndTime.Time
		wa.End = &end
	}
	return wa
}

func normalizeQuestion(dto questionDTO) model.EventQuestion {
	qType := model.QuestionType(strings.ToUpper(firstNonEmpty(dto.QuestionType, dto.Type)))
	if qType == "" {
		qType = model.QuestionTypeText
	}
	return model.EventQuestion{
		ID:       dto.ID,
		Text:     firstNonEmpty(dto.QuestionText, dto.Text),
		Type:     qType,
		Options:  []string(dto.Options),
		Required: dto.IsRequired || dto.Required,
	}
}

func normalizeEvent(dto eventDTO) *model.Event {
	event := &model.Event{
		ID:          dto.ID,
		OrgID:       firstID(dto.OrgID, dto.OrganizationID, orgRefID(dto.Organization)),
		OrgName:     firstNonEmpty(dto.OrgName, orgRefName(dto.Organization)),
		Title:       dto.Title,
		Description: dto.Description,
		Location:    dto.Location,
		Start:       dto.StartTime.Time,
		End:         dto.EndTime.Time,
	}

	// Legacy events carry shifts instead of work areas
	areas := dto.WorkAreas
	if len(areas) == 0 {
		areas = dto.Shifts
	}
	for i, wa := range areas {
		event.WorkAreas = append(event.WorkAreas, normalizeWorkArea(wa, i))
	}
	for _, q := range dto.Questions {
		event.Questions = append(event.Questions, normalizeQuestion(q))
	}
	return event
}

func normalizeApplication(dto applicationDTO) model.Application {
	answers := make(map[string]string, len(dto.Answers))
	for k, v := range dto.Answers {
		answers[k] = v
	}
	return model.Application{
		ID:               dto.ID,
		EventID:          dto.EventID,
		EventTitle:       dto.EventTitle,
		OrgID:            firstID(dto.OrgID, orgRefID(dto.Organization)),
		OrgName:          firstNonEmpty(dto.OrgName, orgRefName(dto.Organization)),
		UserID:           dto.UserID,
		UserName:         dto.UserName,
		UserEmail:        dto.UserEmail,
		UserPhone:        dto.UserPhone,
		WorkAreaID:       dto.WorkAreaID,
		WorkAreaName:     firstNonEmpty(dto.WorkAreaName, dto.Area, dto.ShiftName),
		Status:           model.ApplicationStatus(strings.ToUpper(dto.Status)),
		Answers:          answers,
		AdminNote:        dto.AdminNote,
		RejectionMessage: dto.RejectionMessage,
		UserOrgRole:      dto.UserOrgRole,
		UserJoinDate:     dto.UserJoinDate,
	}
}

func normalizeApplications(dtos []applicationDTO) []model.Application {
	apps := make([]model.Application, 0, len(dtos))
	for _, dto := range dtos {
		apps = append(apps, normalizeApplication(dto))
	}
	return apps
}

// normalizeMembership maps a membership record. A missing status becomes missing, so that an
// incomplete profile never confers capabilities; roster entries pass MembershipStatusApproved
// because /users/team only lists active members.
func normalizeMembership(dto membershipDTO, missing model.MembershipStatus) model.Membership {
	status := model.MembershipStatus(strings.ToUpper(dto.Status))
	if status == "" {
		status = missing
	}
	return model.Membership{
		ID:               dto.ID,
		OrgID:            firstID(dto.OrgID, orgRefID(dto.Organization)),
		OrgName:          firstNonEmpty(dto.OrgName, orgRefName(dto.Organization)),
		Role:             normalizeOrgRole(firstNonEmpty(dto.Role, dto.OrgRole)),
		Status:           status,
		RejectionMessage: dto.RejectionMessage,
	}
}

func normalizeUser(dto userDTO) *model.User {
	user := &model.User{
		ID:    dto.ID,
		Name:  dto.Name,
		Email: dto.Email,
		Phone: dto.PhoneNumber,
		Role:  normalizeGlobalRole(dto.Role),
	}
	for _, m := range dto.Memberships {
		user.Memberships = append(user.Memberships, normalizeMembership(m, model.MembershipStatusPending))
	}
	return user
}

func normalizeTeamMember(dto teamMemberDTO) model.TeamMember {
	member := model.TeamMember{
		ID:         dto.ID,
		Name:       dto.Name,
		Email:      dto.Email,
		Phone:      dto.PhoneNumber,
		GlobalRole: normalizeGlobalRole(dto.GlobalRole),
	}
	for _, o := range dto.Organizations {
		member.Organizations = append(member.Organizations, normalizeMembership(o, model.MembershipStatusApproved))
	}
	return member
}

func normalizeMembershipApplication(dto applicationDTO) model.MembershipApplication {
	status := model.MembershipStatus(strings.ToUpper(dto.Status))
	if status == "" {
		status = model.MembershipStatusPending
	}
	return model.MembershipApplication{
		ID:               dto.ID,
		UserID:           dto.UserID,
		UserName:         dto.UserName,
		UserEmail:        dto.UserEmail,
		UserPhone:        dto.UserPhone,
		OrgID:            firstID(dto.OrgID, orgRefID(dto.Organization)),
		OrgName:          firstNonEmpty(dto.OrgName, orgRefName(dto.Organization)),
		Status:           status,
		RejectionMessage: dto.RejectionMessage,
	}
}
