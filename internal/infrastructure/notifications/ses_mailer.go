package notifications

import (
	"context"

	"github.com/Sam2op/ProjectEase/internal/infrastructure/database"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESMailer delivers the engine's email-shaped notifications through SESv2.
//
// Callers treat delivery as fire-and-forget; this type only reports the
// transport error and never retries.

type SESMailer struct {
	client *sesv2.Client
	sender string
}

var _ interfaces.INotificationGateway = (*SESMailer)(nil)

func NewSESMailer(ctx context.Context, sender string) (*SESMailer, error) {
	cfg, err := database.NewAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &SESMailer{client: sesv2.NewFromConfig(cfg), sender: sender}, nil
}

func (m *SESMailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	return err
}
