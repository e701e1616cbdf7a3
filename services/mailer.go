package services

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/acuaterra/piscicola-backend/utils"
)

// Mailer envía correos transaccionales (códigos de verificación,
// restablecimiento de contraseña). El envío es fire-and-forget: un
// fallo se registra en el log y nunca tumba la petición.
type Mailer struct {
	Host     string
	Port     string
	From     string
	Username string
	Password string
}

func NewMailerFromEnv() *Mailer {
	return &Mailer{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		From:     os.Getenv("SMTP_FROM"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}

func (m *Mailer) send(to, subject, body string) error {
	if m.Host == "" {
		return fmt.Errorf("SMTP_HOST no configurado")
	}

	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" + body + "\r\n")

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, []string{to}, msg)
}

// SendAsync despacha el correo en una goroutine y solo registra el
// resultado.
func (m *Mailer) SendAsync(to, subject, body string) {
	go func() {
		if err := m.send(to, subject, body); err != nil {
			utils.ErrorLogger.Printf("Error enviando correo a %s: %v", to, err)
			return
		}
		utils.InfoLogger.Printf("Correo enviado a %s: %s", to, subject)
	}()
}

// SendVerificationCode envía el código de un workflow de aprobación.
func (m *Mailer) SendVerificationCode(to, code string) {
	body := fmt.Sprintf("Su código de verificación es: %s\n\nEl código vence en %d minutos.",
		code, int(utils.VerificationCodeTTL.Minutes()))
	m.SendAsync(to, "Código de verificación", body)
}

// SendPasswordReset envía el token de restablecimiento de contraseña.
func (m *Mailer) SendPasswordReset(to, token string) {
	body := fmt.Sprintf("Use este token para restablecer su contraseña: %s", token)
	m.SendAsync(to, "Restablecimiento de contraseña", body)
}
