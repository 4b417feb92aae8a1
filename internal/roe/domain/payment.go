package domain

import "math"

// Industry assessment rates as a fraction of total earnings. Riskier
// industries carry higher rates, capped at 2%.
var IndustryRates = map[string]float64{
	"Construction":  0.02,
	"Mining":        0.02,
	"Oil and Gas":   0.02,
	"Agriculture":   0.015,
	"Manufacturing": 0.015,

	"Retail":         0.01,
	"Wholesale":      0.01,
	"Healthcare":     0.01,
	"Transportation": 0.01,
	"Logistics":      0.01,

	"Information Technology": 0.005,
	"Finance":                0.005,
	"Insurance":              0.005,
	"Education":              0.005,
	"Real Estate":            0.005,
	"Professional Services":  0.005,
	"Hospitality":            0.008,
}

// DefaultIndustryRate applies when none of the organisation's
// industries carries a published rate.
const DefaultIndustryRate = 0.01

// maxPaymentFraction caps the assessed amount at 10% of total
// earnings.
const maxPaymentFraction = 0.10

// CalculatePayment derives the amount due for a declaration. Earnings
// come from the final assessment when it holds data, then the
// provisional assessment, then the top level fields. The first of the
// organisation's industries with a published rate sets the rate;
// organisations with more than 100 personnel get a 5% reduction. The
// result is capped and rounded to cents.
func CalculatePayment(industries []string, roe *ROE, numberOfEmployees, numberOfDirectors int) float64 {
	final := roe.FinalAssessment.Data()
	provisional := roe.ProvisionalAssessment.Data()

	var employees, directors, accommodation float64
	finalTotal := final.TotalEarnings
	if finalTotal == 0 {
		finalTotal = final.EmployeesEarnings
	}
	provTotal := provisional.TotalEarnings
	if provTotal == 0 {
		provTotal = provisional.EmployeesEarnings
	}

	switch {
	case finalTotal > 0:
		employees = final.EmployeesEarnings
		directors = final.DirectorsEarnings
		accommodation = final.AccommodationAndMeals
	case provTotal > 0:
		employees = provisional.EmployeesEarnings
		directors = provisional.DirectorsEarnings
		accommodation = provisional.AccommodationAndMeals
	default:
		employees = roe.EmployeesEarnings
		directors = roe.DirectorsEarnings
		accommodation = roe.AccommodationMeals
	}

	total := employees + directors + accommodation
	if total <= 0 {
		return 0
	}

	rate := DefaultIndustryRate
	for _, industry := range industries {
		if r, ok := IndustryRates[industry]; ok {
			rate = r
			break
		}
	}

	amount := total * rate

	if numberOfEmployees+numberOfDirectors > 100 {
		amount *= 0.95
	}

	if cap := total * maxPaymentFraction; amount > cap {
		amount = cap
	}

	return math.Round(amount*100) / 100
}
