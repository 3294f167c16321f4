package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	certdomain "github.com/sahayog-foundation/sahayog/internal/certificate/domain"
	"github.com/sahayog-foundation/sahayog/internal/clock"
	"github.com/sahayog-foundation/sahayog/internal/config"
	"github.com/sahayog-foundation/sahayog/internal/observability/metrics"
	"github.com/sahayog-foundation/sahayog/internal/providers/pdf"
	"github.com/sahayog-foundation/sahayog/pkg/db"
)

const certificatePrefix = "CRT-"

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    certdomain.Repository
	PDF     pdf.Provider
	Cfg     config.Config
	CertCfg *config.CertificateConfigHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    certdomain.Repository
	pdf     pdf.Provider
	dir     string
	certCfg *config.CertificateConfigHolder
	metrics *metrics.Metrics
}

func New(p Params) certdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("certificate.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		pdf:     p.PDF,
		dir:     p.Cfg.CertificateDir,
		certCfg: p.CertCfg,
		metrics: p.Metrics,
	}
}

func (s *Service) Issue(ctx context.Context, req certdomain.IssueRequest) (certdomain.Certificate, error) {
	recipient := strings.TrimSpace(req.RecipientName)
	if recipient == "" {
		return certdomain.Certificate{}, certdomain.ErrInvalidRecipient
	}

	existing, err := s.repo.FindByDonationID(ctx, s.db, req.DonationID)
	if err != nil {
		return certdomain.Certificate{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := s.clock.Now()
	certCfg := s.certCfg.Get()
	number := certificatePrefix + ulid.Make().String()

	verifyURL := ""
	if certCfg.VerifyBaseURL != "" {
		verifyURL = strings.TrimRight(certCfg.VerifyBaseURL, "/") + "/certificates/" + number
	}

	reader, err := s.pdf.GenerateCertificate(ctx, pdf.CertificateData{
		OrganizationName:  certCfg.OrganizationName,
		TagLine:           certCfg.TagLine,
		CertificateNumber: number,
		RecipientName:     recipient,
		Amount:            req.Amount,
		CampaignTitle:     req.CampaignTitle,
		IssuedOn:          now.Format("02 Jan 2006"),
		SignatoryName:     certCfg.SignatoryName,
		SignatoryTitle:    certCfg.SignatoryTitle,
		VerifyURL:         verifyURL,
	})
	if err != nil {
		s.countFailure(ctx)
		return certdomain.Certificate{}, err
	}

	filePath, err := s.store(number, reader)
	if err != nil {
		s.countFailure(ctx)
		return certdomain.Certificate{}, err
	}

	certificate := certdomain.Certificate{
		ID:                s.genID.Generate(),
		DonationID:        req.DonationID,
		CertificateNumber: number,
		RecipientName:     recipient,
		FilePath:          filePath,
		IssuedAt:          now,
		CreatedAt:         now,
	}

	if err := s.repo.Insert(ctx, s.db, &certificate); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// Lost a race with a concurrent issue for the same donation.
			if existing, findErr := s.repo.FindByDonationID(ctx, s.db, req.DonationID); findErr == nil && existing != nil {
				return *existing, nil
			}
		}
		s.countFailure(ctx)
		return certdomain.Certificate{}, err
	}

	if s.metrics != nil {
		metrics.Add(ctx, s.metrics.CertificatesIssued)
	}
	return certificate, nil
}

func (s *Service) store(number string, reader io.Reader) (string, error) {
	if reader == nil {
		return "", nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(s.dir, number+".pdf")
	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return "", err
	}
	return filePath, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (certdomain.Certificate, error) {
	certificate, err := s.repo.FindByNumber(ctx, s.db, strings.TrimSpace(number))
	if err != nil {
		return certdomain.Certificate{}, err
	}
	if certificate == nil {
		return certdomain.Certificate{}, certdomain.ErrCertificateNotFound
	}
	return *certificate, nil
}

func (s *Service) Document(ctx context.Context, number string) ([]byte, error) {
	certificate, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if certificate.FilePath == "" {
		return nil, certdomain.ErrDocumentMissing
	}
	data, err := os.ReadFile(certificate.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, certdomain.ErrDocumentMissing
		}
		return nil, err
	}
	return data, nil
}

func (s *Service) countFailure(ctx context.Context) {
	if s.metrics != nil {
		metrics.Add(ctx, s.metrics.CertificatesFailed)
	}
}
