package docgen

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkingFormRendersPDF(t *testing.T) {
	g := New()

	form, filename, err := g.LinkingForm(context.Background(), LinkingFormData{
		TradingName:          "Atisa Software Solutions",
		RegistrationNumber:   "2013 / 058921 / 07",
		CFRegistrationNumber: "991234567890",
		UserName:             "Thabo",
		UserSurname:          "Nkosi",
		UserIDNumber:         "9001015009087",
		UserEmail:            "thabo@example.com",
		RequestedAt:          time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "linking-form-atisa-software-solutions.pdf", filename)
	assert.True(t, bytes.HasPrefix(form, []byte("%PDF")))
}
