// Package resend delivers storefront notifications through the Resend API,
// rendering the store's dark-theme Spanish email templates.
package resend

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/stereohaus/beatstore/notify"
)

type Notifier struct {
	client    *resend.Client
	from      string
	storeName string
	// inbox receives custom beat requests
	inbox string
}

type Config struct {
	APIKey    string
	From      string // e.g. "HØME <noreply@homebeats.store>"
	StoreName string
	Inbox     string
}

func New(cfg Config) *Notifier {
	name := cfg.StoreName
	if name == "" {
		name = "HØME"
	}
	return &Notifier{
		client:    resend.NewClient(cfg.APIKey),
		from:      cfg.From,
		storeName: name,
		inbox:     cfg.Inbox,
	}
}

func (n *Notifier) send(ctx context.Context, to, subject, html string) error {
	_, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("resend: send %q: %w", subject, err)
	}
	return nil
}

func (n *Notifier) VerificationCode(ctx context.Context, email, code string) error {
	subject := fmt.Sprintf("Verifica tu cuenta en %s", n.storeName)
	body := fmt.Sprintf(`
		<h2 style="text-align:center;color:#ffffff;">Verifica tu cuenta</h2>
		<p style="color:#d1d5db;line-height:1.6;">Usa este código para verificar tu cuenta en %s:</p>
		<p style="text-align:center;font-size:32px;letter-spacing:8px;color:#ffffff;font-weight:bold;">%s</p>
		<p style="color:#9ca3af;font-size:14px;">⏰ Este código expirará en 10 minutos.</p>`,
		n.storeName, code)
	return n.send(ctx, email, subject, n.wrap(body))
}

func (n *Notifier) PasswordReset(ctx context.Context, email, resetURL string) error {
	subject := fmt.Sprintf("Restablece tu contraseña - %s", n.storeName)
	body := fmt.Sprintf(`
		<h2 style="text-align:center;color:#ffffff;">Restablece tu contraseña</h2>
		<p style="color:#d1d5db;line-height:1.6;">Recibimos una solicitud para restablecer la contraseña de tu cuenta en %s. Haz clic en el siguiente botón para crear una nueva contraseña:</p>
		<p style="text-align:center;">
			<a href="%s" style="display:inline-block;background-color:#ffffff;color:#000000;font-weight:bold;padding:15px 30px;border-radius:8px;text-decoration:none;">Restablecer Contraseña</a>
		</p>
		<p style="color:#d1d5db;font-size:14px;"><strong>⏰ Este enlace expirará en 30 minutos.</strong><br>Si no solicitaste este cambio, puedes ignorar este email.</p>
		<p style="color:#9ca3af;font-size:11px;word-break:break-all;">%s</p>`,
		n.storeName, resetURL, resetURL)
	return n.send(ctx, email, subject, n.wrap(body))
}

func (n *Notifier) PurchaseReceipt(ctx context.Context, r notify.Receipt) error {
	var items strings.Builder
	for _, it := range r.Items {
		fmt.Fprintf(&items, `
			<tr>
				<td style="color:#ffffff;padding:10px;border-bottom:1px solid rgba(255,255,255,0.1);">%s</td>
				<td style="color:#d1d5db;padding:10px;border-bottom:1px solid rgba(255,255,255,0.1);">Licencia %s</td>
				<td style="color:#ffffff;padding:10px;text-align:right;border-bottom:1px solid rgba(255,255,255,0.1);">%s</td>
			</tr>`, it.BeatName, titleCase(it.Tier), it.Price.String())
	}

	name := r.BuyerName
	if name == "" {
		name = "productor"
	}
	body := fmt.Sprintf(`
		<h2 style="text-align:center;color:#ffffff;">¡Gracias por tu compra!</h2>
		<p style="color:#d1d5db;line-height:1.6;">Hola %s, tu pago fue procesado correctamente. Aquí está el resumen de tu compra:</p>
		<table width="100%%" style="background-color:#0a0a0a;border-radius:8px;border-collapse:collapse;">%s
			<tr>
				<td colspan="2" style="color:#ffffff;padding:10px;font-weight:bold;">Total</td>
				<td style="color:#dc2626;padding:10px;text-align:right;font-weight:bold;">%s</td>
			</tr>
		</table>
		<p style="color:#d1d5db;font-size:14px;">Tus archivos y contratos ya están disponibles en tu cuenta.</p>`,
		name, items.String(), r.Total.String())

	subject := fmt.Sprintf("Tu compra - %s", n.storeName)
	if len(r.Items) == 1 {
		subject = fmt.Sprintf("Tu compra: %s - %s", r.Items[0].BeatName, n.storeName)
	}
	return n.send(ctx, r.BuyerEmail, subject, n.wrap(body))
}

func (n *Notifier) BeatRequest(ctx context.Context, r notify.BeatRequest) error {
	if n.inbox == "" {
		return fmt.Errorf("resend: no inbox configured for beat requests")
	}
	body := fmt.Sprintf(`
		<h2 style="color:#ffffff;">Nueva solicitud de beat personalizado</h2>
		<p style="color:#d1d5db;"><strong>Nombre:</strong> %s</p>
		<p style="color:#d1d5db;"><strong>Email:</strong> %s</p>
		<p style="color:#d1d5db;"><strong>Género:</strong> %s</p>
		<p style="color:#d1d5db;"><strong>BPM:</strong> %s</p>
		<p style="color:#d1d5db;"><strong>Mood:</strong> %s</p>
		<p style="color:#d1d5db;"><strong>Detalles:</strong><br>%s</p>`,
		r.Name, r.Email, r.Genre, r.BPM, r.Mood, r.Details)
	return n.send(ctx, n.inbox, fmt.Sprintf("Solicitud de beat - %s", n.storeName), n.wrap(body))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// wrap applies the storefront's dark email frame.
func (n *Notifier) wrap(body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,sans-serif;background-color:#000000;color:#ffffff;padding:20px;margin:0;">
	<table width="100%%" cellpadding="0" cellspacing="0">
		<tr><td align="center">
			<table width="600" cellpadding="0" cellspacing="0" style="background-color:#18181b;border:1px solid rgba(255,255,255,0.1);border-radius:8px;padding:40px;">
				<tr><td align="center"><h1 style="color:#ffffff;font-size:36px;margin:0 0 20px 0;">%s</h1></td></tr>
				<tr><td>%s</td></tr>
				<tr><td style="text-align:center;color:#9ca3af;font-size:12px;border-top:1px solid rgba(255,255,255,0.1);padding-top:20px;">© %s. Todos los derechos reservados.</td></tr>
			</table>
		</td></tr>
	</table>
</body>
</html>`, n.storeName, body, n.storeName)
}
