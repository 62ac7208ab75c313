package domain

// FeatureRecord is what a scoring capability consumes.
type FeatureRecord struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// Stage1Features is the view the accept/refer model was calibrated on.
type Stage1Features struct {
	LoanAmount       float64 `json:"loan_amount" yaml:"loan_amount"`
	EmpLength        float64 `json:"emp_length" yaml:"emp_length"`
	DTI              float64 `json:"dti" yaml:"dti"`
	FicoEst          float64 `json:"fico_est" yaml:"fico_est"`
	FicoMissing      int     `json:"fico_missing" yaml:"fico_missing"`
	EmpLengthMissing int     `json:"emp_length_missing" yaml:"emp_length_missing"`
}

func (f Stage1Features) Record() FeatureRecord {
	return FeatureRecord{
		Numeric: map[string]float64{
			"loan_amount":        f.LoanAmount,
			"emp_length":         f.EmpLength,
			"dti":                f.DTI,
			"fico_est":           f.FicoEst,
			"fico_missing":       float64(f.FicoMissing),
			"emp_length_missing": float64(f.EmpLengthMissing),
		},
		Categorical: map[string]string{},
	}
}

// Stage2Features is the view the default-risk model was trained on.
type Stage2Features struct {
	LoanAmount       float64 `json:"loan_amount" yaml:"loan_amount"`
	Term             int     `json:"term" yaml:"term"`
	Purpose          string  `json:"purpose" yaml:"purpose"`
	AnnualIncome     float64 `json:"annual_income" yaml:"annual_income"`
	EmpLength        float64 `json:"emp_length" yaml:"emp_length"`
	DTI              float64 `json:"dti" yaml:"dti"`
	Utilization      float64 `json:"utilization" yaml:"utilization"`
	Delinquencies    float64 `json:"delinquencies" yaml:"delinquencies"`
	FicoEst          float64 `json:"fico_est" yaml:"fico_est"`
	FicoMissing      int     `json:"fico_missing" yaml:"fico_missing"`
	EmpLengthMissing int     `json:"emp_length_missing" yaml:"emp_length_missing"`
}

func (f Stage2Features) Record() FeatureRecord {
	return FeatureRecord{
		Numeric: map[string]float64{
			"loan_amount":        f.LoanAmount,
			"term":               float64(f.Term),
			"annual_income":      f.AnnualIncome,
			"emp_length":         f.EmpLength,
			"dti":                f.DTI,
			"utilization":        f.Utilization,
			"delinquencies":      f.Delinquencies,
			"fico_est":           f.FicoEst,
			"fico_missing":       float64(f.FicoMissing),
			"emp_length_missing": float64(f.EmpLengthMissing),
		},
		Categorical: map[string]string{
			"purpose": f.Purpose,
		},
	}
}
