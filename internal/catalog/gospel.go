package catalog

type gospelFile struct {
	Themes            map[string]GospelTheme   `yaml:"themes"`
	Testimony         string                   `yaml:"testimony"`
	Styles            map[string]GospelStyle   `yaml:"styles"`
	Visuals           map[string][]string      `yaml:"visuals"`
	Transitions       []string                 `yaml:"transitions"`
	Lighting          []string                 `yaml:"lighting"`
	EngagementFactors []string                 `yaml:"engagement_factors"`
	Examples          map[string]GospelExample `yaml:"examples"`
}

type VisualRef struct {
	Group string `yaml:"group"`
	Index int    `yaml:"index"`
}

type GospelTheme struct {
	Name               string      `yaml:"name" json:"name"`
	Keywords           []string    `yaml:"keywords" json:"keywords"`
	Mood               string      `yaml:"mood" json:"mood"`
	DurationPreference string      `yaml:"duration_preference" json:"duration_preference"`
	Visuals            []VisualRef `yaml:"visuals" json:"-"`
	Script             string      `yaml:"script" json:"-"`
}

type MusicRecommendation struct {
	Instruments []string `yaml:"instruments" json:"primary_instruments"`
	Mood        string   `yaml:"mood" json:"mood"`
	Tempo       string   `yaml:"tempo" json:"tempo"`
	Artists     []string `yaml:"artists" json:"suggested_artists"`
	Tips        []string `yaml:"tips" json:"production_tips"`
}

type GospelStyle struct {
	Characteristics []string            `yaml:"characteristics" json:"characteristics"`
	Pacing          string              `yaml:"pacing" json:"pacing"`
	Energy          string              `yaml:"energy" json:"energy"`
	ColorScheme     string              `yaml:"color_scheme" json:"color_scheme"`
	Music           MusicRecommendation `yaml:"music" json:"music"`
}

// GospelExample is a ready-made request preset.
type GospelExample struct {
	Title       string `yaml:"title" json:"title"`
	Theme       string `yaml:"theme" json:"theme"`
	Style       string `yaml:"style" json:"music_style"`
	Duration    int    `yaml:"duration" json:"duration_minutes"`
	Description string `yaml:"description" json:"description"`
}

func GospelThemes() map[string]GospelTheme {
	return data().gospel.Themes
}

func GospelThemeKeys() []string {
	return sortedKeys(data().gospel.Themes)
}

func LookupGospelTheme(key string) (GospelTheme, error) {
	return lookup("Theme", data().gospel.Themes, key)
}

func GospelStyleKeys() []string {
	return sortedKeys(data().gospel.Styles)
}

func LookupGospelStyle(key string) (GospelStyle, error) {
	return lookup("Music style", data().gospel.Styles, key)
}

func GospelExamples() map[string]GospelExample {
	return data().gospel.Examples
}

func LookupGospelExample(key string) (GospelExample, error) {
	return lookup("Example", data().gospel.Examples, key)
}

// ThemeVisuals resolves the theme's picks from the spiritual visual
// table. Out-of-range references are skipped.
func ThemeVisuals(theme GospelTheme) []string {
	var out []string
	for _, ref := range theme.Visuals {
		group := data().gospel.Visuals[ref.Group]
		if ref.Index >= 0 && ref.Index < len(group) {
			out = append(out, group[ref.Index])
		}
	}
	return out
}

func SpiritualVisuals() map[string][]string {
	return data().gospel.Visuals
}

func TestimonyTemplate() string {
	return data().gospel.Testimony
}

func GospelTransitions() []string {
	return data().gospel.Transitions
}

func GospelLighting() []string {
	return data().gospel.Lighting
}

func GospelEngagementFactors() []string {
	return data().gospel.EngagementFactors
}
