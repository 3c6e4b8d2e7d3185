// Package filter selects fleet repositories by tag and name criteria.
//
// Two include relations exist side by side: SelectAll requires every include
// tag (AND) and SelectAny requires at least one (OR). Both restrict by explicit
// names first, apply exclusions in the same pass, and preserve input order.
package filter

import (
	"fmt"
	"strings"

	"github.com/temirov/repos/internal/fleet"
)

const (
	includeTagsDescriptionTemplateConstant = "tags %s"
	excludeTagsDescriptionTemplateConstant = "excluding tags %s"
	namesDescriptionTemplateConstant       = "repositories %s"
	descriptionPartSeparatorConstant       = " and "
	emptyCriteriaDescriptionConstant       = "no repositories found"
	listOpeningConstant                    = "["
	listClosingConstant                    = "]"
	listSeparatorConstant                  = ", "
	quotedListItemTemplateConstant         = "%q"
)

// Criteria narrows a fleet for one operation.
type Criteria struct {
	IncludeTags []string
	ExcludeTags []string
	Names       []string

	// NamesProvided distinguishes an explicit empty name list from no name restriction.
	NamesProvided bool
}

// WithNames returns a copy of the criteria restricted to the provided names.
func (criteria Criteria) WithNames(names []string) Criteria {
	restricted := criteria
	restricted.Names = append([]string(nil), names...)
	restricted.NamesProvided = true
	return restricted
}

type inclusionRelation func(record fleet.RepositoryRecord, includeTags []string) bool

// SelectAll keeps records carrying every include tag and none of the exclude tags.
func SelectAll(universe []fleet.RepositoryRecord, criteria Criteria) []fleet.RepositoryRecord {
	return selectRecords(universe, criteria, fleet.RepositoryRecord.HasAllTags)
}

// SelectAny keeps records carrying at least one include tag and none of the exclude tags.
func SelectAny(universe []fleet.RepositoryRecord, criteria Criteria) []fleet.RepositoryRecord {
	return selectRecords(universe, criteria, fleet.RepositoryRecord.HasAnyTag)
}

func selectRecords(universe []fleet.RepositoryRecord, criteria Criteria, relation inclusionRelation) []fleet.RepositoryRecord {
	candidates := universe
	if criteria.NamesProvided {
		candidates = ByNames(universe, criteria.Names)
	}

	selected := make([]fleet.RepositoryRecord, 0, len(candidates))
	for _, record := range candidates {
		if len(criteria.IncludeTags) > 0 && !relation(record, criteria.IncludeTags) {
			continue
		}
		if len(criteria.ExcludeTags) > 0 && record.HasAnyTag(criteria.ExcludeTags) {
			continue
		}
		selected = append(selected, record)
	}
	return selected
}

// ByNames keeps records whose name appears in names. Unknown names are ignored.
func ByNames(universe []fleet.RepositoryRecord, names []string) []fleet.RepositoryRecord {
	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}

	selected := make([]fleet.RepositoryRecord, 0, len(names))
	for _, record := range universe {
		if _, matched := wanted[record.Name]; matched {
			selected = append(selected, record)
		}
	}
	return selected
}

// ByTag keeps records carrying tag. An empty tag keeps everything.
func ByTag(universe []fleet.RepositoryRecord, tag string) []fleet.RepositoryRecord {
	if len(tag) == 0 {
		return append([]fleet.RepositoryRecord(nil), universe...)
	}
	return ByAllTags(universe, []string{tag})
}

// ByAnyTag keeps records carrying at least one of tags. An empty list keeps everything.
func ByAnyTag(universe []fleet.RepositoryRecord, tags []string) []fleet.RepositoryRecord {
	return SelectAny(universe, Criteria{IncludeTags: tags})
}

// ByAllTags keeps records carrying every one of tags. An empty list keeps everything.
func ByAllTags(universe []fleet.RepositoryRecord, tags []string) []fleet.RepositoryRecord {
	return SelectAll(universe, Criteria{IncludeTags: tags})
}

// DescribeCriteria renders criteria for "no repositories matched" messages.
func DescribeCriteria(criteria Criteria) string {
	var descriptionParts []string
	if len(criteria.IncludeTags) > 0 {
		descriptionParts = append(descriptionParts, fmt.Sprintf(includeTagsDescriptionTemplateConstant, formatList(criteria.IncludeTags)))
	}
	if len(criteria.ExcludeTags) > 0 {
		descriptionParts = append(descriptionParts, fmt.Sprintf(excludeTagsDescriptionTemplateConstant, formatList(criteria.ExcludeTags)))
	}
	if criteria.NamesProvided {
		descriptionParts = append(descriptionParts, fmt.Sprintf(namesDescriptionTemplateConstant, formatList(criteria.Names)))
	}

	if len(descriptionParts) == 0 {
		return emptyCriteriaDescriptionConstant
	}
	return strings.Join(descriptionParts, descriptionPartSeparatorConstant)
}

func formatList(values []string) string {
	quotedValues := make([]string, 0, len(values))
	for _, value := range values {
		quotedValues = append(quotedValues, fmt.Sprintf(quotedListItemTemplateConstant, value))
	}
	return listOpeningConstant + strings.Join(quotedValues, listSeparatorConstant) + listClosingConstant
}
