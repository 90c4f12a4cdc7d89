// internal/notify/ses.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESConfig configures the SES notifier. Static credentials are optional;
// when empty the default AWS credential chain applies.
type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Sender    string
}

// SESNotifier sends order confirmations through Amazon SES.
type SESNotifier struct {
	client *ses.Client
	sender string
}

func NewSESNotifier(ctx context.Context, cfg SESConfig) (*SESNotifier, error) {
	if cfg.Sender == "" {
		return nil, fmt.Errorf("sender email address is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &SESNotifier{
		client: ses.NewFromConfig(awsCfg),
		sender: cfg.Sender,
	}, nil
}

func (n *SESNotifier) OrderConfirmation(ctx context.Context, to string, c Confirmation) error {
	if to == "" {
		return fmt.Errorf("recipient email address is empty")
	}

	subject := fmt.Sprintf("Order %s confirmation", c.OrderID)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\nThank you for your order! Order %s has been placed.\nTotal: $%.2f\n\nYour Bookstore Team",
		c.Username, c.OrderID, c.TotalPrice)

	bodyHTML := fmt.Sprintf(`
		<html><body>
		<p>Dear %s,</p>
		<p>Thank you for your order! Order <strong>%s</strong> has been placed.</p>
		<p>Total: $%.2f</p>
		<p>Your Bookstore Team</p>
		</body></html>`, c.Username, c.OrderID, c.TotalPrice)

	input := &ses.SendEmailInput{
		Source: aws.String(n.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(subject),
			},
			Body: &types.Body{
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}
