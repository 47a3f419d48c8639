// Package naming turns SVG file names into Android drawable resource names.
package naming

import (
	"path/filepath"
	re "regexp"
	s "strings"
)

type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Rules drive a Transformer. Substitutions run in order, so an earlier
// entry can change what a later one sees.
type Rules struct {
	StripPrefix   string         `yaml:"strip_prefix"`
	Substitutions []Substitution `yaml:"substitutions"`
	Prefix        string         `yaml:"prefix"`
	Extension     string         `yaml:"extension"`
}

func DefaultRules() Rules {
	return Rules{
		StripPrefix: "Solar",
		Substitutions: []Substitution{
			{"BoldDuotone", "_bold"},
			{"LineDuotone", "_line"},
			{"LinearDuotone", "_line"},
			{"Linear", "_line"},
		},
		Prefix:    "ic_",
		Extension: ".xml",
	}
}

var (
	reWordStart  = re.MustCompile(`(.)([A-Z][a-z]+)`)
	reCamelJoint = re.MustCompile(`([a-z0-9])([A-Z])`)
	reUnderscore = re.MustCompile(`_+`)
)

type Transformer struct {
	rules Rules
}

func New(rules Rules) *Transformer {
	return &Transformer{rules: rules}
}

var std = New(DefaultRules())

// Transform maps a file stem with the default rules:
// "SolarBoldDuotoneHome" becomes "ic_bold_home.xml".
func Transform(stem string) string {
	return std.Transform(stem)
}

func (t *Transformer) Transform(stem string) string {
	name := stem
	if t.rules.StripPrefix != "" {
		name = s.TrimPrefix(name, t.rules.StripPrefix)
	}
	for _, sub := range t.rules.Substitutions {
		if sub.From == "" {
			continue
		}
		name = s.ReplaceAll(name, sub.From, sub.To)
	}

	// two passes: "AbcDef" -> "Abc_Def" first, then leftover "fooBar" joints
	name = reWordStart.ReplaceAllString(name, "${1}_${2}")
	name = reCamelJoint.ReplaceAllString(name, "${1}_${2}")
	name = s.ToLower(name)

	name = s.ReplaceAll(name, "-", "_")
	name = reUnderscore.ReplaceAllString(name, "_")
	name = s.Trim(name, "_")

	return t.rules.Prefix + name + t.rules.Extension
}

// FileName transforms the stem of a path such as "images/SolarHome.svg".
func (t *Transformer) FileName(path string) string {
	return t.Transform(Stem(path))
}

func Stem(path string) string {
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return s.TrimSuffix(base, filepath.Ext(base))
}
