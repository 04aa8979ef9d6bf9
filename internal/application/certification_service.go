package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/oksasatya/go-ddd-user-certification/internal/domain"
	"github.com/oksasatya/go-ddd-user-certification/internal/domain/notification"
)

const (
	DefaultCertificationBaseURL = "http://localhost:8080"

	CertificationTitle      = "Please certify your email address"
	certificationBodyPrefix = "Please click the following link to certify your email address : "
)

// Certifier sends the certification message for a freshly registered user.
type Certifier interface {
	Send(ctx context.Context, email string, userID int64, certificationCode string) error
}

// CertificationService composes the verification link and hands it to the notification port.
type CertificationService struct {
	Sender  notification.Sender
	BaseURL string
}

func NewCertificationService(sender notification.Sender, baseURL string) *CertificationService {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultCertificationBaseURL
	}
	return &CertificationService{Sender: sender, BaseURL: baseURL}
}

// Send dispatches exactly one message. Failures come back as *domain.DeliveryError and are not retried.
func (s *CertificationService) Send(ctx context.Context, email string, userID int64, certificationCode string) error {
	link := s.CertificationURL(userID, certificationCode)
	return domain.AsDeliveryError(email, s.Sender.Send(ctx, email, CertificationTitle, CertificationBody(link)))
}

func (s *CertificationService) CertificationURL(userID int64, certificationCode string) string {
	return fmt.Sprintf("%s/api/users/%d/verify?certificationCode=%s", s.BaseURL, userID, url.QueryEscape(certificationCode))
}

func CertificationBody(link string) string {
	return certificationBodyPrefix + link
}
