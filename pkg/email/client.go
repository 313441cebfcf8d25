package email

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Client handles outbound email over SMTP.
type Client struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewClient creates a new email client.
func NewClient(host, port, username, password, from string) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendNotification sends a plain-text message to every recipient in one
// delivery. Recipients are not visible to each other.
func (c *Client) SendNotification(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}

	message := c.buildMessage(subject, body)

	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%s", c.host, c.port)

	if err := smtp.SendMail(addr, auth, c.from, to, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (c *Client) buildMessage(subject, body string) string {
	from := c.from
	if from == "" {
		from = "no-reply@example.com"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	return b.String()
}
