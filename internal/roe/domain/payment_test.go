package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestCalculatePaymentConstructionRate(t *testing.T) {
	roe := &ROE{EmployeesEarnings: 100000}
	amount := CalculatePayment([]string{"Construction"}, roe, 10, 2)
	assert.Equal(t, 2000.0, amount)
}

func TestCalculatePaymentDefaultRate(t *testing.T) {
	roe := &ROE{EmployeesEarnings: 50000}
	amount := CalculatePayment([]string{"Unknown Industry"}, roe, 5, 1)
	assert.Equal(t, 500.0, amount)
}

func TestCalculatePaymentHospitalityRate(t *testing.T) {
	roe := &ROE{EmployeesEarnings: 100000}
	amount := CalculatePayment([]string{"Hospitality"}, roe, 10, 0)
	assert.Equal(t, 800.0, amount)
}

func TestCalculatePaymentFirstMatchingIndustryWins(t *testing.T) {
	roe := &ROE{EmployeesEarnings: 100000}
	amount := CalculatePayment([]string{"Not Rated", "Finance", "Construction"}, roe, 10, 0)
	assert.Equal(t, 500.0, amount)
}

func TestCalculatePaymentZeroEarnings(t *testing.T) {
	roe := &ROE{}
	amount := CalculatePayment([]string{"Construction"}, roe, 10, 0)
	assert.Equal(t, 0.0, amount)
}

func TestCalculatePaymentLargeWorkforceReduction(t *testing.T) {
	roe := &ROE{EmployeesEarnings: 100000}
	amount := CalculatePayment([]string{"Mining"}, roe, 99, 2)
	// 101 personnel in total triggers the 5% reduction.
	assert.Equal(t, 1900.0, amount)
}

func TestCalculatePaymentFinalAssessmentPrecedence(t *testing.T) {
	roe := &ROE{
		EmployeesEarnings: 999999,
		FinalAssessment: datatypes.NewJSONType(Assessment{
			EmployeesEarnings: 40000,
			DirectorsEarnings: 10000,
		}),
		ProvisionalAssessment: datatypes.NewJSONType(Assessment{
			EmployeesEarnings: 70000,
		}),
	}
	amount := CalculatePayment([]string{"Retail"}, roe, 10, 0)
	assert.Equal(t, 500.0, amount)
}

func TestCalculatePaymentProvisionalFallback(t *testing.T) {
	roe := &ROE{
		EmployeesEarnings: 999999,
		ProvisionalAssessment: datatypes.NewJSONType(Assessment{
			EmployeesEarnings:     20000,
			AccommodationAndMeals: 5000,
		}),
	}
	amount := CalculatePayment([]string{"Retail"}, roe, 10, 0)
	assert.Equal(t, 250.0, amount)
}

func TestCalculatePaymentAssessmentWithOnlyTotalStillSelects(t *testing.T) {
	// An assessment carrying only a total is still preferred over the
	// top level fields, even though its parts sum to zero.
	roe := &ROE{
		EmployeesEarnings: 999999,
		FinalAssessment: datatypes.NewJSONType(Assessment{
			TotalEarnings: 50000,
		}),
	}
	amount := CalculatePayment([]string{"Retail"}, roe, 10, 0)
	assert.Equal(t, 0.0, amount)
}

func TestCalculatePaymentRoundsToCents(t *testing.T) {
	roe := &ROE{EmployeesEarnings: 33333.33}
	amount := CalculatePayment([]string{"Finance"}, roe, 1, 0)
	assert.Equal(t, 166.67, amount)
}
