package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type IDCardData struct {
	OrganizationName string
	FullName         string
	MembershipNo     string
	MemberSince      string
	Phone            string
	Email            string
	VerifyURL        string
}

func (p *PDFProvider) GenerateIDCard(ctx context.Context, data IDCardData) (io.Reader, error) {
	cfg := config.NewBuilder().Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, data.OrganizationName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   3,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, "Member Identity Card", props.Text{
			Size:  10,
			Align: align.Center,
		}),
	)

	m.AddRow(30,
		col.New(8).Add(
			text.New("Name: "+data.FullName, props.Text{Size: 11, Style: fontstyle.Bold, Top: 4}),
			text.New("Membership no: "+data.MembershipNo, props.Text{Size: 9, Top: 10}),
			text.New("Member since: "+data.MemberSince, props.Text{Size: 9, Top: 14}),
			text.New("Phone: "+data.Phone, props.Text{Size: 9, Top: 18}),
			text.New("Email: "+data.Email, props.Text{Size: 9, Top: 22}),
		),
		qrColumn(4, data.VerifyURL),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
