package model

// Survey score columns, in the order correlations are reported.
const (
	ScoreProductivity = "Productivity"
	ScoreAbsorption   = "Absorption"
	ScoreVigor        = "Vigor"
	ScoreDedication   = "Dedication"
)

// Targets lists the survey scores correlated against every metric.
var Targets = []string{ScoreProductivity, ScoreAbsorption, ScoreVigor, ScoreDedication}

// IsTarget reports whether name is one of Targets.
func IsTarget(name string) bool {
	for _, t := range Targets {
		if t == name {
			return true
		}
	}
	return false
}

// SurveyRecord is one day of self-reported scores.
type SurveyRecord struct {
	Date         Date  `json:"date"`
	Productivity Value `json:"productivity"`
	Vigor        Value `json:"vigor"`
	Dedication   Value `json:"dedication"`
	Absorption   Value `json:"absorption"`
}

// Score returns the named score.
func (s *SurveyRecord) Score(name string) (Value, bool) {
	switch name {
	case ScoreProductivity:
		return s.Productivity, true
	case ScoreVigor:
		return s.Vigor, true
	case ScoreDedication:
		return s.Dedication, true
	case ScoreAbsorption:
		return s.Absorption, true
	}
	return Value{}, false
}
