package model

import "time"

// User is the signed-in identity together with its organization memberships
type User struct {
	ID          int64
	Name        string
	Email       string
	Phone       string
	Role        GlobalRole
	Memberships []Membership
}

// Membership binds a user to an organization
type Membership struct {
	ID               int64 // membership record id, empty when the backend omits it
	OrgID            int64
	OrgName          string
	Role             OrgRole
	Status           MembershipStatus
	RejectionMessage string
}

// Organization is the tenant that owns events and a membership roster
type Organization struct {
	ID          int64
	Name        string
	Address     string
	Description string
	Email       string
	Phone       string
}

// WorkArea is a named slot within an event. Legacy shifts are normalized into this shape.
type WorkArea struct {
	ID          int64
	Name        string
	Description string
	Capacity    int
	Start       *time.Time
	End         *time.Time
}

// EventQuestion is a custom field shown to applicants
type EventQuestion struct {
	ID       int64
	Text     string
	Type     QuestionType
	Options  []string
	Required bool
}

// Event belongs to exactly one organization
type Event struct {
	ID          int64
	OrgID       int64
	OrgName     string
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	WorkAreas   []WorkArea
	Questions   []EventQuestion
}

// AreaNames returns the work area names in event order
func (e *Event) AreaNames() []string {
	names := make([]string, len(e.WorkAreas))
	for i, wa := range e.WorkAreas {
		names[i] = wa.Name
	}
	return names
}

// QuestionTexts returns the question texts in event order
func (e *Event) QuestionTexts() []string {
	texts := make([]string, len(e.Questions))
	for i, q := range e.Questions {
		texts[i] = q.Text
	}
	return texts
}

// Application is a volunteer's request to work in one work area of an event
type Application struct {
	ID               int64
	EventID          int64
	EventTitle       string
	OrgID            int64
	OrgName          string
	UserID           int64
	UserName         string
	UserEmail        string
	UserPhone        string
	WorkAreaID       int64
	WorkAreaName     string
	Status           ApplicationStatus
	Answers          map[string]string // keyed by question text
	AdminNote        string
	RejectionMessage string
	UserOrgRole      string
	UserJoinDate     string
}

// Active reports whether the application counts towards capacity and "already applied" checks
func (a Application) Active() bool {
	return a.Status != ApplicationStatusWithdrawn
}

// TeamMember is a user as seen from the team roster
type TeamMember struct {
	ID            int64
	Name          string
	Email         string
	Phone         string
	GlobalRole    GlobalRole
	Organizations []Membership
}

// HighestRoleWeight returns the largest role weight across the member's organizations
func (m TeamMember) HighestRoleWeight() int {
	highest := 0
	for _, o := range m.Organizations {
		if w := o.Role.Weight(); w > highest {
			highest = w
		}
	}
	return highest
}

// MembershipApplication is a pending (or decided) request to join an organization
type MembershipApplication struct {
	ID               int64
	UserID           int64
	UserName         string
	UserEmail        string
	UserPhone        string
	OrgID            int64
	OrgName          string
	Status           MembershipStatus
	RejectionMessage string
}

// AreaOccupancy counts approved, non-withdrawn applications per work area name
func AreaOccupancy(apps []Application) map[string]int {
	occupancy := make(map[string]int)
	for _, app := range apps {
		if app.Active() && app.Status == ApplicationStatusApproved {
			occupancy[app.WorkAreaName]++
		}
	}
	return occupancy
}

// HasActiveApplication reports whether any non-withdrawn application exists for the event
func HasActiveApplication(apps []Application, eventID int64) bool {
	for _, app := range apps {
		if app.EventID == eventID && app.Active() {
			return true
		}
	}
	return false
}
