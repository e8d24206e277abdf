package catalog

import "strings"

type styleFile struct {
	Styles        map[string]Style `yaml:"styles"`
	Suggestions   []styleRule      `yaml:"suggestions"`
	FallbackStyle string           `yaml:"fallback_style"`
}

type styleRule struct {
	Style    string   `yaml:"style"`
	Keywords []string `yaml:"keywords"`
}

// Style is a video composition approach.
type Style struct {
	Name            string   `yaml:"name" json:"name"`
	Description     string   `yaml:"description" json:"description"`
	BestFor         []string `yaml:"best_for" json:"best_for"`
	Complexity      string   `yaml:"complexity" json:"complexity"`
	ProductionTime  string   `yaml:"production_time" json:"production_time"`
	CostEfficiency  string   `yaml:"cost_efficiency" json:"cost_efficiency"`
	EngagementLevel string   `yaml:"engagement_level" json:"engagement_level"`
	Examples        string   `yaml:"examples" json:"examples"`
}

func Styles() map[string]Style {
	return data().styles.Styles
}

func StyleKeys() []string {
	return sortedKeys(data().styles.Styles)
}

func LookupStyle(key string) (Style, error) {
	return lookup("Style", data().styles.Styles, key)
}

// SuggestStyle picks a composition style from keywords in the script.
// Rules are checked in order and the first hit wins.
func SuggestStyle(script string) string {
	lower := strings.ToLower(script)
	for _, rule := range data().styles.Suggestions {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Style
			}
		}
	}
	return data().styles.FallbackStyle
}
