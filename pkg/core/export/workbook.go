package export

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxSheetNameLength is the spreadsheet limit on tab names
const MaxSheetNameLength = 31

const fallbackSheetName = "Sheet"

// Sheet is one tab. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an ordered set of uniquely named sheets
type Workbook struct {
	Sheets []Sheet
	used   map[string]bool
}

func NewWorkbook() *Workbook {
	return &Workbook{used: make(map[string]bool)}
}

// AddSheet sanitizes name, makes it unique within the workbook and appends the sheet
func (wb *Workbook) AddSheet(name string, rows [][]string) string {
	if wb.used == nil {
		wb.used = make(map[string]bool)
	}
	unique := wb.uniqueName(SanitizeSheetName(name))
	wb.used[strings.ToLower(unique)] = true
	wb.Sheets = append(wb.Sheets, Sheet{Name: unique, Rows: rows})
	return unique
}

// Sheet returns the sheet called name
func (wb *Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range wb.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Names returns sheet names in order
func (wb *Workbook) Names() []string {
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}

// uniqueName appends " (n)" until the name is free, truncating the base to stay within the limit.
// Spreadsheet tab names compare case-insensitively.
func (wb *Workbook) uniqueName(name string) string {
	if !wb.used[strings.ToLower(name)] {
		return name
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := truncateRunes(name, MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
		if !wb.used[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

// SanitizeSheetName removes characters spreadsheets reject in tab names and truncates to MaxSheetNameLength runes
func SanitizeSheetName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '[', ']':
			return -1
		}
		return r
	}, name)
	// A leading or trailing apostrophe is also rejected
	cleaned = strings.Trim(strings.TrimSpace(cleaned), "'")
	cleaned = strings.TrimSpace(truncateRunes(cleaned, MaxSheetNameLength))
	if cleaned == "" {
		return fallbackSheetName
	}
	return cleaned
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// FileName builds a filesystem-safe export file name from a title
func FileName(prefix, title string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', '*', '?', ':', '[', ']', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	safe = strings.ReplaceAll(safe, " ", "_")
	if safe == "" {
		return prefix + ".xlsx"
	}
	return fmt.Sprintf("%s_%s.xlsx", prefix, safe)
}
