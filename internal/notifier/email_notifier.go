package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	config "github.com/SoyVutha/chroma-supply-chain/configs"
)

// SendOrderEmail sends the order confirmation through SES. Called from a
// goroutine after the checkout transaction commits; a failure here never
// affects the order.
func SendOrderEmail(recipientEmail string, customerName string, orderID uint, totalAmount float64) error {
	cfg := config.LoadEmailConfig()

	if cfg.SenderEmail == "" {
		log.Printf("Email notifier not configured, skipping confirmation for order %d", orderID)
		return nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		log.Printf("Failed to load AWS SDK config for email to %s (order %d): %v", recipientEmail, orderID, err)
		return fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := ses.NewFromConfig(awsCfg)

	subject := fmt.Sprintf("Chroma Supply order #%d confirmed", orderID)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour order #%d has been confirmed. Total: $%.2f.\n\nYou can track its status from My Orders.\n\nChroma Supply",
		customerName, orderID, totalAmount,
	)

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(cfg.SenderEmail),
	}

	if _, err := client.SendEmail(context.TODO(), input); err != nil {
		log.Printf("Failed to send confirmation email to %s (order %d): %v", recipientEmail, orderID, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("Confirmation email sent to %s for order %d", recipientEmail, orderID)
	return nil
}
