package export

import (
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

const missingAnswer = "-"

// Sheet names for the application workbook
const (
	SheetCurrentFilter = "Current filter"
)

// applicant is one deduplicated identity
type applicant struct {
	name     string
	email    string
	phone    string
	areas    []string
	statuses []string
	answers  map[string]string
}

// identityKey dedupes by email, then user id, then name
func identityKey(app model.Application) string {
	if email := strings.ToLower(strings.TrimSpace(app.UserEmail)); email != "" {
		return "email:" + email
	}
	if app.UserID != 0 {
		return fmt.Sprintf("id:%d", app.UserID)
	}
	return "name:" + strings.TrimSpace(app.UserName)
}

// ApplicationRows returns the header and one row per distinct identity in first-seen order.
// Repeated identities have their areas and statuses concatenated and their answers merged, later values winning.
func ApplicationRows(apps []model.Application, questions []string) [][]string {
	header := append([]string{"Name", "Email", "Phone", "Work areas", "Statuses"}, questions...)
	rows := [][]string{header}

	index := make(map[string]*applicant)
	var order []*applicant
	for _, app := range apps {
		key := identityKey(app)
		a, ok := index[key]
		if !ok {
			a = &applicant{
				name:    app.UserName,
				email:   app.UserEmail,
				phone:   app.UserPhone,
				answers: make(map[string]string),
			}
			index[key] = a
			order = append(order, a)
		}
		if a.phone == "" {
			a.phone = app.UserPhone
		}
		if !contains(a.areas, app.WorkAreaName) {
			a.areas = append(a.areas, app.WorkAreaName)
		}
		a.statuses = append(a.statuses, fmt.Sprintf("%s: %s", app.WorkAreaName, app.Status.Label()))
		for q, answer := range app.Answers {
			a.answers[q] = answer
		}
	}

	for _, a := range order {
		row := []string{a.name, a.email, a.phone, strings.Join(a.areas, ", "), strings.Join(a.statuses, " | ")}
		for _, q := range questions {
			answer := a.answers[q]
			if strings.TrimSpace(answer) == "" {
				answer = missingAnswer
			}
			row = append(row, answer)
		}
		rows = append(rows, row)
	}
	return rows
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ApplicationSheet builds one deduplicated sheet
func ApplicationSheet(name string, apps []model.Application, questions []string) Sheet {
	return Sheet{Name: name, Rows: ApplicationRows(apps, questions)}
}

// ApplicationsWorkbook builds the export for an event: the current filtered view, one sheet per
// status over the whole collection, then one sheet per work area.
func ApplicationsWorkbook(event *model.Event, all, current []model.Application) *Workbook {
	questions := event.QuestionTexts()
	wb := NewWorkbook()

	wb.AddSheet(SheetCurrentFilter, ApplicationRows(current, questions))

	for _, status := range model.ApplicationStatuses {
		wb.AddSheet(status.Label(), ApplicationRows(filter(all, func(a model.Application) bool {
			return a.Status == status
		}), questions))
	}

	for _, area := range event.AreaNames() {
		wb.AddSheet(area, ApplicationRows(filter(all, func(a model.Application) bool {
			return a.WorkAreaName == area
		}), questions))
	}
	return wb
}

func filter(apps []model.Application, keep func(model.Application) bool) []model.Application {
	var out []model.Application
	for _, a := range apps {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
