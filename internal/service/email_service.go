package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"dealership-service/configs"
	"dealership-service/internal/metrics"
	"dealership-service/internal/models"
)

// mailSender is the part of gomail.Dialer used to deliver messages
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailSvc is an implementation of the service.EmailService interface
type EmailSvc struct {
	logger *logrus.Logger
	config *configs.Config
	sender mailSender
}

// NewEmailService creates a new EmailSvc that delivers through the configured SMTP server
func NewEmailService(deps Dependencies) *EmailSvc {
	return &EmailSvc{
		logger: deps.Logger,
		config: deps.Config,
		sender: gomail.NewDialer(
			deps.Config.Email.SMTPHost,
			deps.Config.Email.SMTPPort,
			deps.Config.Email.SMTPUser,
			deps.Config.Email.SMTPPassword,
		),
	}
}

// SendApplicationConfirmation tells the customer their finance application was received
func (s *EmailSvc) SendApplicationConfirmation(ctx context.Context, customer *models.Customer, vehicle *models.Vehicle, app *models.FinanceApplication) error {
	if customer.Contact.Email == "" {
		return nil
	}

	subject := fmt.Sprintf("Finance Application Received: %s %s", vehicle.Model, vehicle.Variant)

	body := fmt.Sprintf(`
	<h2>Finance Application Received</h2>
	<p>Dear %s,</p>

	<p>Thank you for applying for financing. Your application is now pending review.</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Reference:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Vehicle:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Vehicle Price:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Down Payment:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f (%.2f%%)</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Loan Amount:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Interest Rate:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f%% per year</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Monthly Installment:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f x %d months</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Insurance Premium:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%.2f (%s)</td>
		</tr>
	</table>

	<p>Our finance team will contact you once a decision has been made.</p>

	<p>
	Best regards,<br>
	Dealership Finance Team
	</p>
	`,
		html.EscapeString(customer.Name),
		app.Reference,
		html.EscapeString(vehicle.Model), html.EscapeString(vehicle.Variant),
		app.VehiclePrice,
		app.DownPaymentAmount, app.DownPaymentPercent,
		app.LoanAmount,
		app.InterestRate,
		app.MonthlyInstallment, app.TenureMonths,
		app.InsurancePremium, app.InsuranceType,
	)

	if err := s.sendEmail("application_confirmation", customer.Contact.Email, subject, body); err != nil {
		return err
	}

	s.logger.Infof("Finance application confirmation sent to %s for application %s", customer.Contact.Email, app.Reference)

	return nil
}

// SendReorderAlert notifies the parts desk that a part dropped below its minimum level
func (s *EmailSvc) SendReorderAlert(ctx context.Context, part *models.Part) error {
	subject := fmt.Sprintf("Reorder Alert: %s (%s)", part.Name, part.PartNumber)

	nextOrder := "-"
	if part.NextOrderDate != nil {
		nextOrder = part.NextOrderDate.Format("2006-01-02")
	}

	body := fmt.Sprintf(`
	<h2>Reorder Alert</h2>
	<p>The following part is below its minimum stock level:</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Part:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s (%s)</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Stock:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d of minimum %d</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Supplier:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s %s</td>
		</tr>
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;"><strong>Order By:</strong></td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>
	</table>
	`,
		html.EscapeString(part.Name), html.EscapeString(part.PartNumber),
		part.Stock, part.MinStockLevel,
		html.EscapeString(part.Supplier.Name), html.EscapeString(part.Supplier.Contact),
		nextOrder,
	)

	if err := s.sendEmail("reorder_alert", s.config.Email.PartsDesk, subject, body); err != nil {
		return err
	}

	s.logger.Infof("Reorder alert sent for part %s", part.PartNumber)

	return nil
}

// SendReorderDigest sends the parts desk one table of every low-stock part
func (s *EmailSvc) SendReorderDigest(ctx context.Context, parts []*models.Part) error {
	if len(parts) == 0 {
		return nil
	}

	var rows strings.Builder
	for _, part := range parts {
		nextOrder := "-"
		if part.NextOrderDate != nil {
			nextOrder = part.NextOrderDate.Format("2006-01-02")
		}
		fmt.Fprintf(&rows, `
		<tr>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
			<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
			<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
		</tr>`,
			html.EscapeString(part.PartNumber), html.EscapeString(part.Name),
			part.Stock, part.MinStockLevel,
			html.EscapeString(part.Supplier.Name), nextOrder,
		)
	}

	subject := fmt.Sprintf("Parts Reorder Digest: %d parts below minimum", len(parts))

	body := fmt.Sprintf(`
	<h2>Parts Reorder Digest</h2>
	<p>The following parts are below their minimum stock level:</p>

	<table style="border-collapse: collapse; width: 100%%;">
		<tr>
			<th style="padding: 8px; border: 1px solid #ddd;">Part Number</th>
			<th style="padding: 8px; border: 1px solid #ddd;">Name</th>
			<th style="padding: 8px; border: 1px solid #ddd;">Stock</th>
			<th style="padding: 8px; border: 1px solid #ddd;">Minimum</th>
			<th style="padding: 8px; border: 1px solid #ddd;">Supplier</th>
			<th style="padding: 8px; border: 1px solid #ddd;">Order By</th>
		</tr>%s
	</table>
	`, rows.String())

	if err := s.sendEmail("reorder_digest", s.config.Email.PartsDesk, subject, body); err != nil {
		return err
	}

	s.logger.Infof("Reorder digest sent for %d parts", len(parts))

	return nil
}

// sendEmail sends an email
func (s *EmailSvc) sendEmail(kind, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.Email.SenderEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.sender.DialAndSend(m); err != nil {
		metrics.EmailsSent.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.EmailsSent.WithLabelValues(kind, "sent").Inc()
	return nil
}
