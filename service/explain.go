package service

import (
	"fmt"

	"loan-qualifier/domain"
)

const (
	maxDrivers     = 3
	maxSuggestions = 3

	fallbackDriver     = "Profile is within typical ranges for several key indicators."
	fallbackSuggestion = "Keep key ratios stable (DTI/utilization) and maintain on-time payments."

	summaryHigh   = "High risk flag: the model estimates a higher chance of default based on the entered inputs."
	summaryMedium = "Medium risk: the model sees some elevated signals; consider the guidance below."
	summaryLow    = "Low risk: based on the entered inputs, risk signals are relatively low."

	ExplanationDisclaimer = "Educational estimate only. Not financial advice. " +
		"Do not use this tool to make real lending decisions."

	// Relación préstamo/ingreso a partir de la cual se considera alta
	highLoanToIncome = 0.4
)

// BuildExplanations derives drivers, suggestions and a summary from the
// normalized payload and the stage-2 result. It never calls a scorer.
func BuildExplanations(
	p domain.ApplicationPayload,
	stage2 domain.Stage2Result,
) domain.ExplanationResult {

	drivers := collectDrivers(p)
	if len(drivers) == 0 {
		drivers = []string{fallbackDriver}
	} else if len(drivers) > maxDrivers {
		drivers = drivers[:maxDrivers]
	}

	suggestions := collectSuggestions(p)
	if len(suggestions) == 0 {
		suggestions = []string{fallbackSuggestion}
	} else if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return domain.ExplanationResult{
		Summary:     summaryFor(stage2.RiskBand),
		Drivers:     drivers,
		Suggestions: suggestions,
		Disclaimer:  ExplanationDisclaimer,
	}
}

// El orden de evaluación es fijo: el truncado a tres depende de él.
func collectDrivers(p domain.ApplicationPayload) []string {
	var drivers []string

	switch {
	case p.Fico < 640:
		drivers = append(drivers, "Estimated credit score is below typical prime ranges.")
	case p.Fico < 680:
		drivers = append(drivers, "Estimated credit score is near-prime, which can increase risk versus prime tiers.")
	}

	switch {
	case p.DTI >= 35:
		drivers = append(drivers, "Debt-to-income (DTI) is high relative to typical applicants.")
	case p.DTI >= 25:
		drivers = append(drivers, "DTI is moderate; lower DTI often correlates with better outcomes.")
	}

	switch {
	case p.Utilization >= 50:
		drivers = append(drivers, "Revolving utilization is elevated.")
	case p.Utilization >= 30:
		drivers = append(drivers, "Utilization is moderate; lower utilization often reduces risk.")
	}

	if p.Delinquencies >= 1 {
		drivers = append(drivers, "Recent delinquencies are associated with higher default rates.")
	}
	if p.Term >= 60 {
		drivers = append(drivers, "Longer terms (e.g., 60 months) generally carry higher risk than shorter terms.")
	}
	if p.AnnualIncome > 0 && p.LoanAmount > p.AnnualIncome*highLoanToIncome {
		drivers = append(drivers, "Requested loan amount is high relative to stated annual income.")
	}

	return drivers
}

func collectSuggestions(p domain.ApplicationPayload) []string {
	var suggestions []string

	if p.Utilization > 30 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Lower utilization toward ~30%% (currently %.0f%%) to reduce risk signals.", p.Utilization))
	}
	if p.DTI > 25 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Lower DTI toward ~20–25%% (currently %.0f%%) to improve risk profile.", p.DTI))
	}
	if p.Term == 60 {
		suggestions = append(suggestions,
			"If affordable, consider a shorter term (e.g., 36 months) to reduce long-horizon risk.")
	}
	if p.Delinquencies > 0 {
		suggestions = append(suggestions,
			"Maintaining consistent on-time payments over time can improve risk indicators.")
	}

	return suggestions
}

func summaryFor(band domain.RiskBand) string {
	switch band {
	case domain.RiskBandHigh:
		return summaryHigh
	case domain.RiskBandLow:
		return summaryLow
	default:
		return summaryMedium
	}
}
