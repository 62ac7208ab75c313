package domain

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionRefer   Decision = "refer"
)

type RiskBand string

const (
	RiskBandLow    RiskBand = "Low"
	RiskBandMedium RiskBand = "Medium"
	RiskBandHigh   RiskBand = "High"
)

type Stage1Result struct {
	AcceptProbability float64        `json:"accept_probability" yaml:"accept_probability"`
	Threshold         float64        `json:"threshold" yaml:"threshold"`
	Decision          Decision       `json:"decision" yaml:"decision"`
	InputsUsed        Stage1Features `json:"inputs_used" yaml:"inputs_used"`
}

type BandThresholds struct {
	Medium float64 `json:"medium" yaml:"medium"`
	High   float64 `json:"high" yaml:"high"`
}

type Stage2Result struct {
	DefaultProbability float64        `json:"default_probability" yaml:"default_probability"`
	RiskBand           RiskBand       `json:"risk_band" yaml:"risk_band"`
	Thresholds         BandThresholds `json:"thresholds" yaml:"thresholds"`
	InputsUsed         Stage2Features `json:"inputs_used" yaml:"inputs_used"`
	// Informational is set when stage 1 referred the application; the risk
	// band is still reported but the applicant is not qualified yet.
	Informational bool `json:"informational" yaml:"informational"`
}

type ExplanationResult struct {
	Summary     string   `json:"summary" yaml:"summary"`
	Drivers     []string `json:"drivers" yaml:"drivers"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
	Disclaimer  string   `json:"disclaimer" yaml:"disclaimer"`
}

// QualificationResult is the combined response of the pipeline.
type QualificationResult struct {
	Stage1       Stage1Result      `json:"stage1" yaml:"stage1"`
	Stage2       Stage2Result      `json:"stage2" yaml:"stage2"`
	Explanations ExplanationResult `json:"explanations" yaml:"explanations"`
	Disclaimer   string            `json:"disclaimer" yaml:"disclaimer"`
}
