package service

import "loan-qualifier/domain"

// ProjectStage1 builds the six-field view for the accept/refer gate.
func ProjectStage1(p domain.ApplicationPayload) domain.Stage1Features {
	ficoEst, ficoMissing := ficoView(p)
	empLength, empMissing := empLengthView(p)

	return domain.Stage1Features{
		LoanAmount:       p.LoanAmount,
		EmpLength:        empLength,
		DTI:              p.DTI,
		FicoEst:          ficoEst,
		FicoMissing:      ficoMissing,
		EmpLengthMissing: empMissing,
	}
}

// ProjectStage2 builds the eleven-field view for the default-risk model.
func ProjectStage2(p domain.ApplicationPayload) domain.Stage2Features {
	ficoEst, ficoMissing := ficoView(p)
	empLength, empMissing := empLengthView(p)

	return domain.Stage2Features{
		LoanAmount:       p.LoanAmount,
		Term:             p.Term,
		Purpose:          p.Purpose,
		AnnualIncome:     p.AnnualIncome,
		EmpLength:        empLength,
		DTI:              p.DTI,
		Utilization:      p.Utilization,
		Delinquencies:    p.Delinquencies,
		FicoEst:          ficoEst,
		FicoMissing:      ficoMissing,
		EmpLengthMissing: empMissing,
	}
}

func ficoView(p domain.ApplicationPayload) (float64, int) {
	if !p.FicoPresent {
		return DefaultFicoEstimate, 1
	}
	return p.Fico, 0
}

func empLengthView(p domain.ApplicationPayload) (float64, int) {
	if !p.EmpLengthPresent {
		return DefaultEmpLength, 1
	}
	return p.EmpLength, 0
}
