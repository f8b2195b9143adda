package model

// Significance is the coarse |t| threshold classification.
type Significance string

const (
	SignificanceHigh Significance = "High"
	SignificanceLow  Significance = "Low"
)

// CorrelationResult is one (variable, target) comparison. R and TStat are
// missing when the correlation is undefined.
type CorrelationResult struct {
	Variable     string       `json:"variable"`
	Target       string       `json:"target"`
	R            Value        `json:"r"`
	TStat        Value        `json:"t_stat"`
	N            int          `json:"n"`
	Significance Significance `json:"significance"`
}

// CorrelationRow groups the results of one variable by target.
type CorrelationRow struct {
	Variable string                       `json:"variable"`
	Targets  map[string]CorrelationResult `json:"targets"`
}

// AppRank is one entry of the apps-by-time ranking.
type AppRank struct {
	App     string  `json:"app"`
	Hours   float64 `json:"hours"`
	Seconds float64 `json:"seconds"`
}

// StandardApps names the apps treated as "the" browser and PDF tool.
type StandardApps struct {
	Browser string `json:"browser"`
	PDFTool string `json:"pdf_tool"`
}
