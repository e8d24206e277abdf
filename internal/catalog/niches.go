package catalog

// Niche is the template table behind one niche script generator.
type Niche struct {
	KeyKind         string                `yaml:"key_kind"`
	Channel         string                `yaml:"channel"`
	ColorPalette    string                `yaml:"color_palette"`
	Pacing          string                `yaml:"pacing"`
	Structure       string                `yaml:"structure"`
	DefaultDuration int                   `yaml:"default_duration"`
	DefaultCount    int                   `yaml:"default_count"`
	MaxCount        int                   `yaml:"max_count"`
	Tags            []string              `yaml:"tags"`
	Visuals         []string              `yaml:"visuals"`
	KeyPoints       []string              `yaml:"key_points"`
	Script          string                `yaml:"script"`
	Topics          map[string]NicheTopic `yaml:"topics"`
}

type NicheTopic struct {
	Name       string   `yaml:"name" json:"name"`
	Keywords   []string `yaml:"keywords" json:"keywords"`
	Complexity string   `yaml:"complexity,omitempty" json:"complexity,omitempty"`
	Expertise  string   `yaml:"expertise,omitempty" json:"expertise,omitempty"`
	Duration   string   `yaml:"duration,omitempty" json:"duration,omitempty"`
	Tone       string   `yaml:"tone,omitempty" json:"tone,omitempty"`
	Script     string   `yaml:"script,omitempty" json:"-"`
}

func NicheKeys() []string {
	return sortedKeys(data().niches)
}

func LookupNiche(key string) (Niche, error) {
	return lookup("Niche", data().niches, key)
}

// LookupTopic returns a topic of the niche. The error kind follows the
// niche's own vocabulary (Topic, Category or Style).
func (n Niche) LookupTopic(key string) (NicheTopic, error) {
	return lookup(n.KeyKind, n.Topics, key)
}

func (n Niche) TopicKeys() []string {
	return sortedKeys(n.Topics)
}

// ScriptFor returns the topic's own script template when it has one.
func (n Niche) ScriptFor(t NicheTopic) string {
	if t.Script != "" {
		return t.Script
	}
	return n.Script
}
