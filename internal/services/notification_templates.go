package services

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"gbtravel/internal/models"
)

type emailTemplate struct {
	subject string
	body    *htmltemplate.Template
}

// Renderer turns an outbox message into an email or SMS body.
type Renderer struct {
	appName string
	email   map[string]emailTemplate
	sms     map[string]*texttemplate.Template
}

const emailLayout = `<!DOCTYPE html>
<html><body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 600px; margin: 0 auto;">
<div style="background: #0f766e; color: #fff; padding: 20px; text-align: center;"><h1>{{.AppName}}</h1></div>
<div style="padding: 24px;">{{template "content" .}}</div>
<div style="padding: 16px; font-size: 12px; color: #6b7280; text-align: center;">&copy; {{.AppName}}</div>
</body></html>`

var emailContents = map[string][2]string{
	models.TemplateWelcome: {"Welcome to {{app}}!", `
<h2>Welcome aboard, {{.Data.name}}!</h2>
<p>Your email is verified and your account is ready. Start exploring our destinations and trip packages.</p>
<p><a href="{{.Data.frontendUrl}}">Browse trips</a></p>`},

	models.TemplateEmailVerification: {"Verify your email address", `
<h2>Hi {{.Data.name}},</h2>
<p>Please confirm your email address to activate your account. The link expires in 24 hours.</p>
<p><a href="{{.Data.link}}">Verify email</a></p>`},

	models.TemplateLoginNotification: {"New sign-in to your account", `
<h2>Hi {{.Data.name}},</h2>
<p>We noticed a new sign-in to your account on {{.Data.time}}.</p>
<ul><li>Device: {{.Data.userAgent}}</li><li>IP address: {{.Data.ipAddress}}</li></ul>
<p>If this wasn't you, reset your password right away.</p>`},

	models.TemplateBookingConfirmation: {"Booking confirmed - {{code}}", `
<h2>Your trip is booked, {{.Data.name}}!</h2>
<p>Confirmation code: <strong>{{.Data.confirmationCode}}</strong></p>
<ul>
<li>Trip: {{.Data.tripName}}</li>
<li>Departure: {{.Data.departureDate}}</li>
<li>Travelers: {{.Data.travelers}}</li>
<li>Total: {{.Data.total}}</li>
</ul>`},

	models.TemplatePaymentReceipt: {"Payment receipt - {{code}}", `
<h2>Thank you for your payment, {{.Data.name}}.</h2>
<p>We received {{.Data.amount}} for booking {{.Data.confirmationCode}}.</p>
<p>Reference: {{.Data.reference}}<br>Date: {{.Data.paidAt}}</p>`},

	models.TemplateBookingCancellation: {"Booking cancelled - {{code}}", `
<h2>Hi {{.Data.name}},</h2>
<p>Your booking {{.Data.confirmationCode}} for {{.Data.tripName}} has been cancelled.</p>
<p>Refund amount: {{.Data.refundAmount}}</p>`},

	models.TemplatePasswordReset: {"Reset your password", `
<h2>Hi {{.Data.name}},</h2>
<p>We received a request to reset your password. The link expires in one hour.</p>
<p><a href="{{.Data.link}}">Reset password</a></p>
<p>If you didn't ask for this, you can ignore this email.</p>`},

	models.TemplateTripReminder: {"Your trip is coming up - {{code}}", `
<h2>Get ready, {{.Data.name}}!</h2>
<p>{{.Data.tripName}} departs on {{.Data.departureDate}}.</p>
<p>Confirmation code: {{.Data.confirmationCode}}</p>`},

	models.TemplateInquiryReceived: {"We received your inquiry", `
<h2>Thanks, {{.Data.name}}!</h2>
<p>Our travel team received your inquiry{{if .Data.package}} about {{.Data.package}}{{end}} and will contact you within 24 hours.</p>`},
}

var smsContents = map[string]string{
	models.TemplateBookingConfirmation: `{{.AppName}}: booking {{.Data.confirmationCode}} confirmed for {{.Data.tripName}} departing {{.Data.departureDate}}.`,
	models.TemplateTripReminder:        `{{.AppName}}: {{.Data.tripName}} departs {{.Data.departureDate}}. Booking {{.Data.confirmationCode}}.`,
}

type templateContext struct {
	AppName string
	Data    map[string]string
}

func NewRenderer(appName string) (*Renderer, error) {
	r := &Renderer{
		appName: appName,
		email:   make(map[string]emailTemplate, len(emailContents)),
		sms:     make(map[string]*texttemplate.Template, len(smsContents)),
	}

	for name, content := range emailContents {
		tmpl, err := htmltemplate.New(name).Parse(emailLayout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email layout: %w", err)
		}
		if _, err := tmpl.New("content").Parse(content[1]); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.email[name] = emailTemplate{subject: content[0], body: tmpl}
	}

	for name, content := range smsContents {
		tmpl, err := texttemplate.New(name).Parse(content)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s sms template: %w", name, err)
		}
		r.sms[name] = tmpl
	}

	return r, nil
}

// RenderEmail returns the subject and HTML body for a template.
func (r *Renderer) RenderEmail(template string, data map[string]string) (string, string, error) {
	tmpl, ok := r.email[template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", template)
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, templateContext{AppName: r.appName, Data: data}); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", template, err)
	}

	return r.subject(tmpl.subject, data), buf.String(), nil
}

func (r *Renderer) RenderSMS(template string, data map[string]string) (string, error) {
	tmpl, ok := r.sms[template]
	if !ok {
		return "", fmt.Errorf("unknown sms template %q", template)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateContext{AppName: r.appName, Data: data}); err != nil {
		return "", fmt.Errorf("failed to render sms %s: %w", template, err)
	}
	return buf.String(), nil
}

func (r *Renderer) subject(raw string, data map[string]string) string {
	out := bytes.ReplaceAll([]byte(raw), []byte("{{app}}"), []byte(r.appName))
	out = bytes.ReplaceAll(out, []byte("{{code}}"), []byte(data["confirmationCode"]))
	return string(out)
}
