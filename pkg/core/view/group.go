package view

// OtherGroup collects entries without an organization name
const OtherGroup = "Other"

type Group[T any] struct {
	Name  string
	Items []T
}

// GroupByOrganization groups items by organization name in first-seen order, keeping every item
func GroupByOrganization[T any](items []T, orgName func(T) string) []Group[T] {
	index := make(map[string]int)
	var groups []Group[T]
	for _, item := range items {
		name := orgName(item)
		if name == "" {
			name = OtherGroup
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group[T]{Name: name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}
