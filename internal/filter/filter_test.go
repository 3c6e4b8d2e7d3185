package filter_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repos/internal/filter"
	"github.com/temirov/repos/internal/fleet"
)

const (
	testBackendTagConstant  = "backend"
	testFrontendTagConstant = "frontend"
	testGoTagConstant       = "go"
	testLegacyTagConstant   = "legacy"
)

func buildUniverse() []fleet.RepositoryRecord {
	return []fleet.RepositoryRecord{
		fleet.NewRepositoryBuilder("api", "git@github.com:acme/api.git").WithTags(testBackendTagConstant, testGoTagConstant).Build(),
		fleet.NewRepositoryBuilder("web", "git@github.com:acme/web.git").WithTags(testFrontendTagConstant).Build(),
		fleet.NewRepositoryBuilder("jobs", "git@github.com:acme/jobs.git").WithTags(testBackendTagConstant, testLegacyTagConstant).Build(),
		fleet.NewRepositoryBuilder("docs", "git@github.com:acme/docs.git").Build(),
	}
}

func recordNames(records []fleet.RepositoryRecord) []string {
	names := make([]string, 0, len(records))
	for _, record := range records {
		names = append(names, record.Name)
	}
	return names
}

func TestSelectAllScenarios(testInstance *testing.T) {
	testCases := []struct {
		name          string
		criteria      filter.Criteria
		expectedNames []string
	}{
		{
			name:          "empty_criteria_returns_universe",
			criteria:      filter.Criteria{},
			expectedNames: []string{"api", "web", "jobs", "docs"},
		},
		{
			name:          "single_include_tag",
			criteria:      filter.Criteria{IncludeTags: []string{testBackendTagConstant}},
			expectedNames: []string{"api", "jobs"},
		},
		{
			name:          "include_requires_every_tag",
			criteria:      filter.Criteria{IncludeTags: []string{testBackendTagConstant, testGoTagConstant}},
			expectedNames: []string{"api"},
		},
		{
			name:          "exclude_drops_tagged_records",
			criteria:      filter.Criteria{ExcludeTags: []string{testLegacyTagConstant, testFrontendTagConstant}},
			expectedNames: []string{"api", "docs"},
		},
		{
			name:          "include_and_exclude",
			criteria:      filter.Criteria{IncludeTags: []string{testBackendTagConstant}, ExcludeTags: []string{testLegacyTagConstant}},
			expectedNames: []string{"api"},
		},
		{
			name:          "names_restrict_first_and_ignore_unknown",
			criteria:      filter.Criteria{}.WithNames([]string{"docs", "missing", "api"}),
			expectedNames: []string{"api", "docs"},
		},
		{
			name:          "names_combined_with_tags",
			criteria:      filter.Criteria{IncludeTags: []string{testBackendTagConstant}}.WithNames([]string{"web", "jobs"}),
			expectedNames: []string{"jobs"},
		},
		{
			name:          "explicit_empty_names_select_nothing",
			criteria:      filter.Criteria{}.WithNames(nil),
			expectedNames: []string{},
		},
		{
			name:          "no_match_is_not_an_error",
			criteria:      filter.Criteria{IncludeTags: []string{"rust"}},
			expectedNames: []string{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			selected := filter.SelectAll(buildUniverse(), testCase.criteria)
			if diff := cmp.Diff(testCase.expectedNames, recordNames(selected)); diff != "" {
				testInstance.Fatalf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSelectAllAndSelectAnyDiffer(testInstance *testing.T) {
	universe := buildUniverse()
	criteria := filter.Criteria{IncludeTags: []string{testGoTagConstant, testFrontendTagConstant}}

	require.Empty(testInstance, filter.SelectAll(universe, criteria))
	require.Equal(testInstance, []string{"api", "web"}, recordNames(filter.SelectAny(universe, criteria)))
}

func TestExcludedDifferenceEqualsTaggedRecords(testInstance *testing.T) {
	universe := buildUniverse()
	excludeTags := []string{testLegacyTagConstant, testFrontendTagConstant}

	everything := filter.SelectAll(universe, filter.Criteria{})
	remaining := filter.SelectAll(universe, filter.Criteria{ExcludeTags: excludeTags})

	remainingNames := make(map[string]struct{}, len(remaining))
	for _, record := range remaining {
		remainingNames[record.Name] = struct{}{}
	}

	var difference []string
	for _, record := range everything {
		if _, kept := remainingNames[record.Name]; !kept {
			difference = append(difference, record.Name)
		}
	}

	require.Equal(testInstance, recordNames(filter.ByAnyTag(universe, excludeTags)), difference)
}

func TestSelectionPreservesInputOrder(testInstance *testing.T) {
	universe := buildUniverse()
	reversed := make([]fleet.RepositoryRecord, 0, len(universe))
	for index := len(universe) - 1; index >= 0; index-- {
		reversed = append(reversed, universe[index])
	}

	selected := filter.SelectAny(reversed, filter.Criteria{IncludeTags: []string{testBackendTagConstant, testFrontendTagConstant}})
	require.Equal(testInstance, []string{"jobs", "web", "api"}, recordNames(selected))
}

func TestTagHelpers(testInstance *testing.T) {
	universe := buildUniverse()

	require.Equal(testInstance, []string{"api", "jobs"}, recordNames(filter.ByTag(universe, testBackendTagConstant)))
	require.Len(testInstance, filter.ByTag(universe, ""), len(universe))
	require.Equal(testInstance, []string{"jobs"}, recordNames(filter.ByAllTags(universe, []string{testBackendTagConstant, testLegacyTagConstant})))
	require.Equal(testInstance, []string{"web"}, recordNames(filter.ByNames(universe, []string{"web"})))
}

func TestDescribeCriteria(testInstance *testing.T) {
	testCases := []struct {
		name        string
		criteria    filter.Criteria
		description string
	}{
		{name: "empty", criteria: filter.Criteria{}, description: "no repositories found"},
		{
			name:        "tags_only",
			criteria:    filter.Criteria{IncludeTags: []string{"backend"}},
			description: `tags ["backend"]`,
		},
		{
			name:        "all_parts",
			criteria:    filter.Criteria{IncludeTags: []string{"a"}, ExcludeTags: []string{"b"}}.WithNames([]string{"x", "y"}),
			description: `tags ["a"] and excluding tags ["b"] and repositories ["x", "y"]`,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.description, filter.DescribeCriteria(testCase.criteria))
		})
	}
}
