// internal/alerts/alerts.go

// Package alerts delivers reconciliation alerts for payments that were
// charged but failed validation. Delivery is best-effort: a lost alert is
// logged, never allowed to fail the payment path.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"premium-bot/internal/common/config"
	"premium-bot/internal/common/logger"
	"premium-bot/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
)

// Interfaces over the AWS clients so tests can capture what was sent.
type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Manager fans a post-charge rejection out to the configured channels.
type Manager struct {
	cfg       config.AlertsConfig
	snsClient SNSService
	sesClient SESService
	logger    logger.Logger
}

// NewManager dials AWS once when at least one channel is enabled.
func NewManager(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (*Manager, error) {
	m := &Manager{
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "alerts"}),
	}

	if !cfg.SNS.Enabled && !cfg.Email.Enabled {
		return m, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.SNS.Enabled {
		m.snsClient = sns.NewFromConfig(awsCfg)
	}
	if cfg.Email.Enabled {
		m.sesClient = ses.NewFromConfig(awsCfg)
	}
	return m, nil
}

// NewManagerWithClients injects prebuilt clients, used by tests.
func NewManagerWithClients(cfg config.AlertsConfig, snsClient SNSService, sesClient SESService, log logger.Logger) *Manager {
	return &Manager{
		cfg:       cfg,
		snsClient: snsClient,
		sesClient: sesClient,
		logger:    log.WithFields(map[string]interface{}{"component": "alerts"}),
	}
}

type postChargeAlert struct {
	AlertID          string `json:"alertId"`
	Kind             string `json:"kind"`
	ProviderChargeID string `json:"providerChargeId"`
	PayerID          int64  `json:"payerId"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Reason           string `json:"reason"`
	OccurredAt       string `json:"occurredAt"`
}

// PostChargeRejection publishes a structured alert so support can reconcile
// the charge manually.
func (m *Manager) PostChargeRejection(ctx context.Context, pay models.CompletedPayment, reason string) {
	alert := postChargeAlert{
		AlertID:          uuid.NewString(),
		Kind:             "post_charge_rejection",
		ProviderChargeID: pay.ProviderChargeID,
		PayerID:          int64(pay.PayerID),
		Amount:           pay.Amount.Amount,
		Currency:         pay.Amount.Currency,
		Reason:           reason,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(alert)
	if err != nil {
		m.logger.WithError(err).Error("failed to encode alert", nil)
		return
	}

	if m.cfg.SNS.Enabled && m.snsClient != nil {
		m.publishSNS(ctx, alert, body)
	}
	if m.cfg.Email.Enabled && m.sesClient != nil {
		m.sendEmail(ctx, alert, body)
	}
}

func (m *Manager) publishSNS(ctx context.Context, alert postChargeAlert, body []byte) {
	_, err := m.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(m.cfg.SNS.TopicARN),
		Subject:  aws.String(fmt.Sprintf("Post-charge rejection: %s", alert.ProviderChargeID)),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		m.logger.WithError(err).Error("SNS alert publish failed", map[string]interface{}{
			"providerChargeId": alert.ProviderChargeID,
		})
		return
	}
	m.logger.Info("SNS alert published", map[string]interface{}{
		"alertId":          alert.AlertID,
		"providerChargeId": alert.ProviderChargeID,
	})
}

func (m *Manager) sendEmail(ctx context.Context, alert postChargeAlert, body []byte) {
	_, err := m.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(m.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{m.cfg.Email.ToEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data: aws.String(fmt.Sprintf("Post-charge rejection: %s", alert.ProviderChargeID)),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(string(body))},
			},
		},
	})
	if err != nil {
		m.logger.WithError(err).Error("SES alert email failed", map[string]interface{}{
			"providerChargeId": alert.ProviderChargeID,
		})
		return
	}
	m.logger.Info("SES alert email sent", map[string]interface{}{
		"alertId":          alert.AlertID,
		"providerChargeId": alert.ProviderChargeID,
	})
}
