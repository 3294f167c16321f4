package pdf

import (
	"context"
	"io"
)

// Provider renders the documents the platform hands out.
type Provider interface {
	GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error)
	GenerateIDCard(ctx context.Context, data IDCardData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateCertificate(ctx context.Context, data CertificateData) (io.Reader, error) {
	return nil, nil
}

func (p *NoOpProvider) GenerateIDCard(ctx context.Context, data IDCardData) (io.Reader, error) {
	return nil, nil
}
