package enums

import (
	"fmt"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type GenderPreference string

const (
	PreferenceMale   GenderPreference = "male"
	PreferenceFemale GenderPreference = "female"
	PreferenceBoth   GenderPreference = "both"
)

func ParseGender(input string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(input))); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, nil
	default:
		return "", fmt.Errorf("unknown gender %q", input)
	}
}

func ParseGenderPreference(input string) (GenderPreference, error) {
	switch p := GenderPreference(strings.ToLower(strings.TrimSpace(input))); p {
	case PreferenceMale, PreferenceFemale, PreferenceBoth:
		return p, nil
	default:
		return "", fmt.Errorf("unknown gender preference %q", input)
	}
}

// Accepts reports whether a profile of the given gender satisfies the preference.
func (p GenderPreference) Accepts(g Gender) bool {
	if p == PreferenceBoth {
		return true
	}
	return string(p) == string(g)
}
