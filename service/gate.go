package service

import "loan-qualifier/domain"

const stage1Name = "stage1"

// Gate runs the stage-1 accept/refer decision. Ties go to approve.
func Gate(
	scorer Scorer,
	features domain.Stage1Features,
	threshold float64,
) (domain.Stage1Result, error) {

	p, err := probability(stage1Name, scorer, features.Record())
	if err != nil {
		return domain.Stage1Result{}, err
	}

	decision := domain.DecisionRefer
	if p >= threshold {
		decision = domain.DecisionApprove
	}

	return domain.Stage1Result{
		AcceptProbability: p,
		Threshold:         threshold,
		Decision:          decision,
		InputsUsed:        features,
	}, nil
}
