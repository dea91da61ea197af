package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Wire shapes. Several backend revisions populate different field names for the same
// concept; every alias is listed here and resolved once in normalize.go.

// LocalDateTime decodes the backend's zone-less timestamps
type LocalDateTime struct {
	time.Time
}

var localDateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.RFC3339Nano,
	"2006-01-02",
}

func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range localDateTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// optionList accepts either a JSON array or a comma separated string
type optionList []string

func (o *optionList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("invalid question options: %w", err)
	}
	var out []string
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*o = out
	return nil
}

type orgRefDTO struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

type workAreaDTO struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Area          string         `json:"area"`
	Description   string         `json:"description"`
	Capacity      *int           `json:"capacity"`
	MaxVolunteers *int           `json:"maxVolunteers"`
	StartTime     *LocalDateTime `json:"startTime"`
	EndTime       *LocalDateTime `json:"endTime"`
	WorkArea      *workAreaDTO   `json:"workArea"`
}

type questionDTO struct {
	ID           int64      `json:"id"`
	QuestionText string     `json:"questionText"`
	Text         string     `json:"text"`
	QuestionType string     `json:"questionType"`
	Type         string     `json:"type"`
	Options      optionList `json:"options"`
	IsRequired   bool       `json:"isRequired"`
	Required     bool       `json:"required"`
}

type eventDTO struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Location       string        `json:"location"`
	StartTime      LocalDateTime `json:"startTime"`
	EndTime        LocalDateTime `json:"endTime"`
	OrgID          *int64        `json:"orgId"`
	OrganizationID *int64        `json:"organizationId"`
	OrgName        string        `json:"orgName"`
	Organization   *orgRefDTO    `json:"organization"`
	WorkAreas      []workAreaDTO `json:"workAreas"`
	Shifts         []workAreaDTO `json:"shifts"`
	Questions      []questionDTO `json:"questions"`
}

type applicationDTO struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"userId"`
	UserName         string            `json:"userName"`
	UserEmail        string            `json:"userEmail"`
	UserPhone        string            `json:"userPhone"`
	OrgName          string            `json:"orgName"`
	OrgID            *int64            `json:"orgId"`
	Organization     *orgRefDTO        `json:"organization"`
	WorkAreaID       int64             `json:"workAreaId"`
	WorkAreaName     string            `json:"workAreaName"`
	Area             string            `json:"area"`
	ShiftName        string            `json:"shiftName"`
	Status           string            `json:"status"`
	EventID          int64             `json:"eventId"`
	EventTitle       string            `json:"eventTitle"`
	Answers          map[string]string `json:"answers"`
	AdminNote        string            `json:"adminNote"`
	RejectionMessage string            `json:"rejectionMessage"`
	UserOrgRole      string            `json:"userOrgRole"`
	UserJoinDate     string            `json:"userJoinDate"`
}

type membershipDTO struct {
	ID               int64      `json:"id"`
	OrgID            *int64     `json:"orgId"`
	Organization     *orgRefDTO `json:"organization"`
	OrgName          string     `json:"orgName"`
	Role             string     `json:"role"`
	OrgRole          string     `json:"orgRole"`
	Status           string     `json:"status"`
	RejectionMessage string     `json:"rejectionMessage"`
}

type userDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber"`
	Role        string          `json:"role"`
	Memberships []membershipDTO `json:"memberships"`
}

type teamMemberDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	GlobalRole    string          `json:"globalRole"`
	PhoneNumber   string          `json:"phoneNumber"`
	Organizations []membershipDTO `json:"organizations"`
}

type organizationDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

type applyRequest struct {
	EventID              int64            `json:"eventId"`
	PreferredWorkAreaIDs []int64          `json:"preferredWorkAreaIds"`
	Answers              map[int64]string `json:"answers,omitempty"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type bulkEmailRequest struct {
	ApplicationIDs []int64 `json:"applicationIds,omitempty"`
	UserIDs        []int64 `json:"userIds,omitempty"`
	Subject        string  `json:"subject"`
	Message        string  `json:"message"`
}
