// Package docgen renders the linking authorisation form a user must
// sign before their account is attached to an organisation.
package docgen

import (
	"context"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type LinkingFormData struct {
	TradingName          string
	RegistrationNumber   string
	CFRegistrationNumber string
	UserName             string
	UserSurname          string
	UserIDNumber         string
	UserEmail            string
	RequestedAt          time.Time
}

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

// LinkingForm renders the authorisation form PDF and returns it with
// a filename derived from the organisation's trading name.
func (g *Generator) LinkingForm(ctx context.Context, data LinkingFormData) ([]byte, string, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(15,
		text.NewCol(12, "Linking Authorisation Form", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(10,
		text.NewCol(12, "Compensation Fund Employer Portal", props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)

	m.AddRow(8, line.NewCol(12))

	m.AddRow(30,
		col.New(12).Add(
			text.New("Organisation", props.Text{Style: fontstyle.Bold, Size: 12}),
			text.New("Trading name: "+data.TradingName, props.Text{Top: 6, Size: 10}),
			text.New("Registration number: "+data.RegistrationNumber, props.Text{Top: 11, Size: 10}),
			text.New("CF registration number: "+data.CFRegistrationNumber, props.Text{Top: 16, Size: 10}),
		),
	)

	m.AddRow(30,
		col.New(12).Add(
			text.New("Applicant", props.Text{Style: fontstyle.Bold, Size: 12}),
			text.New(fmt.Sprintf("Full name: %s %s", data.UserName, data.UserSurname), props.Text{Top: 6, Size: 10}),
			text.New("Identity number: "+data.UserIDNumber, props.Text{Top: 11, Size: 10}),
			text.New("Email: "+data.UserEmail, props.Text{Top: 16, Size: 10}),
		),
	)

	m.AddRow(25,
		text.NewCol(12,
			"I, the undersigned authorised representative of the organisation named above, "+
				"hereby authorise the applicant to access and act on behalf of this organisation "+
				"on the Compensation Fund employer portal.",
			props.Text{Size: 10, Top: 3},
		),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Signature: ____________________", props.Text{Top: 8, Size: 10}),
		),
		col.New(6).Add(
			text.New("Date: ____________________", props.Text{Top: 8, Size: 10}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Requested on "+data.RequestedAt.Format("2 January 2006"), props.Text{
			Size:  8,
			Align: align.Right,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, "", fmt.Errorf("generate linking form: %w", err)
	}

	filename := fmt.Sprintf("linking-form-%s.pdf", slug.Make(data.TradingName))
	return doc.GetBytes(), filename, nil
}
