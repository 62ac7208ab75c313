package service

// Rangos de normalización de la solicitud de crédito
const (
	MinEmpLength, MaxEmpLength         = 0.0, 50.0
	MinDTI, MaxDTI                     = 0.0, 80.0
	MinUtilization, MaxUtilization     = 0.0, 100.0
	MinDelinquencies, MaxDelinquencies = 0.0, 50.0
	MinFico, MaxFico                   = 300.0, 850.0

	// Valores imputados cuando la solicitud omite el campo
	DefaultFicoEstimate = 650.0
	DefaultEmpLength    = 0.0

	// Frontera media de respaldo cuando band_policy no es válido
	FallbackMediumThreshold = 0.35
)

// Plazos aceptados, en meses
var AllowedTerms = []int{36, 60}
