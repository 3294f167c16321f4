package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type CertificateData struct {
	OrganizationName  string
	TagLine           string
	CertificateNumber string
	RecipientName     string
	Amount            string
	CampaignTitle     string
	IssuedOn          string
	SignatoryName     string
	SignatoryTitle    string
	VerifyURL         string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, data.OrganizationName, props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Center,
			Top:   6,
		}),
	)
	if data.TagLine != "" {
		m.AddRow(8,
			text.NewCol(12, data.TagLine, props.Text{
				Size:  10,
				Align: align.Center,
			}),
		)
	}

	m.AddRow(16,
		text.NewCol(12, "Certificate of Donation", props.Text{
			Size:  18,
			Style: fontstyle.BoldItalic,
			Align: align.Center,
			Top:   4,
		}),
	)

	m.AddRow(10,
		text.NewCol(12, "This certificate is gratefully presented to", props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)
	m.AddRow(14,
		text.NewCol(12, data.RecipientName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	contribution := "in recognition of a contribution of " + data.Amount
	if data.CampaignTitle != "" {
		contribution += " towards " + data.CampaignTitle
	}
	m.AddRow(10,
		text.NewCol(12, contribution, props.Text{
			Size:  11,
			Align: align.Center,
		}),
	)

	m.AddRow(25,
		col.New(4).Add(
			text.New("Certificate no: "+data.CertificateNumber, props.Text{Size: 8, Top: 10}),
			text.New("Issued on: "+data.IssuedOn, props.Text{Size: 8, Top: 14}),
		),
		qrColumn(4, data.VerifyURL),
		col.New(4).Add(
			text.New(data.SignatoryName, props.Text{Size: 10, Style: fontstyle.Bold, Top: 10, Align: align.Right}),
			text.New(data.SignatoryTitle, props.Text{Size: 8, Top: 15, Align: align.Right}),
		),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

// qrColumn embeds a verification QR when a URL is configured.
func qrColumn(size int, url string) core.Col {
	column := col.New(size)
	if url == "" {
		return column
	}
	return column.Add(code.NewQr(url, props.Rect{
		Center:  true,
		Percent: 70,
	}))
}
