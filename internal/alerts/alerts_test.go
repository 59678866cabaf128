// internal/alerts/alerts_test.go
package alerts

import (
	"context"
	"testing"

	"premium-bot/internal/common/config"
	"premium-bot/internal/common/logger"
	"premium-bot/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sns.PublishOutput{}, f.err
}

type fakeSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	return &ses.SendEmailOutput{}, f.err
}

func alertsConfig(snsEnabled, emailEnabled bool) config.AlertsConfig {
	var cfg config.AlertsConfig
	cfg.AWS.Region = "eu-central-1"
	cfg.SNS.Enabled = snsEnabled
	cfg.SNS.TopicARN = "arn:aws:sns:eu-central-1:000000000000:payments-reconciliation"
	cfg.Email.Enabled = emailEnabled
	cfg.Email.FromEmail = "bot@example.com"
	cfg.Email.ToEmail = "support@example.com"
	return cfg
}

func rejectedPayment() models.CompletedPayment {
	return models.CompletedPayment{
		PayerID:          42,
		Amount:           models.Money{Amount: 10, Currency: "USD"},
		Payload:          "premium_42_1day",
		ProviderChargeID: "ch_1",
	}
}

func TestPostChargeRejection_PublishesToAllChannels(t *testing.T) {
	snsClient := &fakeSNS{}
	sesClient := &fakeSES{}
	m := NewManagerWithClients(alertsConfig(true, true), snsClient, sesClient, logger.NewTestLogger(t))

	m.PostChargeRejection(context.Background(), rejectedPayment(), "unsupported currency")

	require.Len(t, snsClient.inputs, 1)
	assert.Contains(t, *snsClient.inputs[0].Subject, "ch_1")
	assert.Contains(t, *snsClient.inputs[0].Message, "post_charge_rejection")
	assert.Contains(t, *snsClient.inputs[0].Message, "unsupported currency")

	require.Len(t, sesClient.inputs, 1)
	assert.Equal(t, "bot@example.com", *sesClient.inputs[0].Source)
	assert.Equal(t, []string{"support@example.com"}, sesClient.inputs[0].Destination.ToAddresses)
}

func TestPostChargeRejection_DisabledChannelsSkipped(t *testing.T) {
	snsClient := &fakeSNS{}
	sesClient := &fakeSES{}
	m := NewManagerWithClients(alertsConfig(true, false), snsClient, sesClient, logger.NewTestLogger(t))

	m.PostChargeRejection(context.Background(), rejectedPayment(), "amount out of range")

	assert.Len(t, snsClient.inputs, 1)
	assert.Empty(t, sesClient.inputs)
}

func TestPostChargeRejection_DeliveryFailureDoesNotPanic(t *testing.T) {
	snsClient := &fakeSNS{err: assert.AnError}
	sesClient := &fakeSES{err: assert.AnError}
	m := NewManagerWithClients(alertsConfig(true, true), snsClient, sesClient, logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		m.PostChargeRejection(context.Background(), rejectedPayment(), "forged payload")
	})
}
