package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/rl1809/storefront/internal/core/domain"
)

type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// EmailNotifier sends the order summary to the customer through SendGrid.
type EmailNotifier struct {
	sender   mailSender
	fromName string
	from     string
}

func NewEmailNotifier(apiKey, fromName, from string) *EmailNotifier {
	return &EmailNotifier{
		sender:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		from:     from,
	}
}

func (e *EmailNotifier) Notify(ctx context.Context, n domain.Notification) error {
	if n.Customer.Email == "" {
		return errors.New("customer email is empty")
	}

	subject := "Your order has been received"
	if n.OrderNumber != "" {
		subject = fmt.Sprintf("Your order %s has been received", n.OrderNumber)
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(e.fromName, e.from),
		subject,
		mail.NewEmail(n.Customer.Name, n.Customer.Email),
		n.Message,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(n.Message)),
	)

	response, err := e.sender.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}
	return nil
}
