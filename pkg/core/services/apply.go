package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-admin/pkg/core/model"
)

// ApplyClient submits new applications
type ApplyClient interface {
	Apply(ctx context.Context, eventID int64, workAreaIDs []int64, answers map[int64]string) error
}

// ApplicationForm is what a volunteer fills in to apply to an event
type ApplicationForm struct {
	EventID int64
	// Areas are work area names, matched case-insensitively
	Areas []string
	// Answers are keyed by question text or question id
	Answers map[string]string
}

// ApplyResult reports which work areas were applied to
type ApplyResult struct {
	Event   *model.Event
	Applied []string
	// Skipped areas already hold an active application of the caller
	Skipped []string
}

// Apply validates the form against the event and submits it. Work areas the caller already holds
// an active application for are skipped; a withdrawn or rejected one does not block.
func Apply(ctx context.Context, client ApplyClient, ldr ApplicantEventLoader, logger *zap.Logger, form ApplicationForm) (*ApplyResult, error) {
	v, err := ldr.LoadApplicantEvent(ctx, form.EventID)
	if err != nil {
		return nil, err
	}
	event := v.Event

	areas, err := resolveWorkAreas(event, form.Areas)
	if err != nil {
		return nil, err
	}
	answers, err := resolveAnswers(event, form.Answers)
	if err != nil {
		return nil, err
	}

	result := &ApplyResult{Event: event}
	var ids []int64
	for _, area := range areas {
		if holdsActiveApplication(v.MyApplications, event.ID, area) {
			result.Skipped = append(result.Skipped, area.Name)
			continue
		}
		ids = append(ids, area.ID)
		result.Applied = append(result.Applied, area.Name)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyApplied, strings.Join(result.Skipped, ", "))
	}

	logger.Info("Applying to event",
		zap.Int64("event_id", event.ID),
		zap.Int64s("work_area_ids", ids),
		zap.Strings("skipped", result.Skipped))
	if err := client.Apply(ctx, event.ID, ids, answers); err != nil {
		return nil, fmt.Errorf("failed to apply to %q: %w", event.Title, err)
	}
	return result, nil
}

// resolveWorkAreas maps names to the event's work areas. An event with a single work area
// needs no explicit choice.
func resolveWorkAreas(event *model.Event, names []string) ([]model.WorkArea, error) {
	if len(names) == 0 {
		if len(event.WorkAreas) == 1 {
			return event.WorkAreas, nil
		}
		return nil, fmt.Errorf("%w: choose at least one work area (%s)", ErrInvalidApplication, strings.Join(event.AreaNames(), ", "))
	}

	var areas []model.WorkArea
	for _, name := range names {
		name = strings.TrimSpace(name)
		i := slices.IndexFunc(event.WorkAreas, func(wa model.WorkArea) bool { return strings.EqualFold(wa.Name, name) })
		if i < 0 {
			return nil, fmt.Errorf("%w: %q has no work area %q", ErrInvalidApplication, event.Title, name)
		}
		if !slices.ContainsFunc(areas, func(wa model.WorkArea) bool { return wa.ID == event.WorkAreas[i].ID }) {
			areas = append(areas, event.WorkAreas[i])
		}
	}
	return areas, nil
}

// resolveAnswers keys the answers by question id and checks them against the questions.
// Choice answers are normalized to the option's spelling; multiple choices are comma separated.
func resolveAnswers(event *model.Event, given map[string]string) (map[int64]string, error) {
	answers := make(map[int64]string)
	for key, value := range given {
		q, ok := findQuestion(event.Questions, key)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no question %q", ErrInvalidApplication, event.Title, key)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if len(q.Options) > 0 {
			normalized, err := matchOptions(q, value)
			if err != nil {
				return nil, err
			}
			value = normalized
		}
		answers[q.ID] = value
	}

	var missing []string
	for _, q := range event.Questions {
		if q.Required && answers[q.ID] == "" {
			missing = append(missing, q.Text)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: answer required for %s", ErrInvalidApplication, strings.Join(missing, ", "))
	}
	return answers, nil
}

func findQuestion(questions []model.EventQuestion, key string) (model.EventQuestion, bool) {
	key = strings.TrimSpace(key)
	for _, q := range questions {
		if strings.EqualFold(q.Text, key) {
			return q, true
		}
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		for _, q := range questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return model.EventQuestion{}, false
}

func matchOptions(q model.EventQuestion, value string) (string, error) {
	choices := []string{value}
	if q.Type.MultiSelect() {
		choices = strings.Split(value, ",")
	} else if q.Type != model.QuestionTypeDropdown {
		return value, nil
	}

	matched := make([]string, 0, len(choices))
	for _, choice := range choices {
		choice = strings.TrimSpace(choice)
		if choice == "" {
			continue
		}
		i := slices.IndexFunc(q.Options, func(opt string) bool { return strings.EqualFold(opt, choice) })
		if i < 0 {
			return "", fmt.Errorf("%w: %q is not an option of %q (%s)", ErrInvalidApplication, choice, q.Text, strings.Join(q.Options, ", "))
		}
		matched = append(matched, q.Options[i])
	}
	return strings.Join(matched, ", "), nil
}

func holdsActiveApplication(apps []model.Application, eventID int64, area model.WorkArea) bool {
	return slices.ContainsFunc(apps, func(app model.Application) bool {
		if app.EventID != eventID || !app.Active() {
			return false
		}
		if app.WorkAreaID != 0 {
			return app.WorkAreaID == area.ID
		}
		return strings.EqualFold(app.WorkAreaName, area.Name)
	})
}
