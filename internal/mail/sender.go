// Package mail renders and delivers notification emails.
package mail

import (
    "bytes"
    "context"
    "crypto/tls"
    "fmt"
    "mime"
    "mime/multipart"
    "mime/quotedprintable"
    "net"
    "net/smtp"
    "net/textproto"
    "strings"
    "time"
)

// Message is one outgoing email with a plain-text and an HTML body.
type Message struct {
    To      string
    Subject string
    Text    string
    HTML    string
}

// Sender delivers a message.  Implementations must honour ctx deadlines.
type Sender interface {
    Send(ctx context.Context, m Message) error
}

// SMTPSender talks to an authenticated SMTP relay, upgrading with STARTTLS
// when the server offers it.
type SMTPSender struct {
    host    string
    addr    string
    user    string
    pass    string
    from    string
    timeout time.Duration
}

func NewSMTPSender(host string, port int, user, pass, from string, timeout time.Duration) *SMTPSender {
    host = strings.TrimSpace(host)
    from = strings.TrimSpace(from)
    if from == "" {
        from = user
    }
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    return &SMTPSender{
        host:    host,
        addr:    net.JoinHostPort(host, fmt.Sprint(port)),
        user:    user,
        pass:    pass,
        from:    from,
        timeout: timeout,
    }
}

func (s *SMTPSender) Send(ctx context.Context, m Message) error {
    d := net.Dialer{Timeout: s.timeout}
    conn, err := d.DialContext(ctx, "tcp", s.addr)
    if err != nil {
        return fmt.Errorf("smtp dial: %w", err)
    }
    deadline := time.Now().Add(s.timeout)
    if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
        deadline = dl
    }
    _ = conn.SetDeadline(deadline)

    c, err := smtp.NewClient(conn, s.host)
    if err != nil {
        _ = conn.Close()
        return fmt.Errorf("smtp handshake: %w", err)
    }
    defer c.Close()

    if ok, _ := c.Extension("STARTTLS"); ok {
        if err := c.StartTLS(&tls.Config{ServerName: s.host, MinVersion: tls.VersionTLS12}); err != nil {
            return fmt.Errorf("smtp starttls: %w", err)
        }
    }
    if s.user != "" {
        if ok, _ := c.Extension("AUTH"); ok {
            if err := c.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
                return fmt.Errorf("smtp auth: %w", err)
            }
        }
    }
    if err := c.Mail(s.from); err != nil {
        return fmt.Errorf("smtp mail from: %w", err)
    }
    if err := c.Rcpt(m.To); err != nil {
        return fmt.Errorf("smtp rcpt: %w", err)
    }
    w, err := c.Data()
    if err != nil {
        return fmt.Errorf("smtp data: %w", err)
    }
    body, err := buildMessage(s.from, m)
    if err != nil {
        _ = w.Close()
        return err
    }
    if _, err := w.Write(body); err != nil {
        _ = w.Close()
        return fmt.Errorf("smtp write: %w", err)
    }
    if err := w.Close(); err != nil {
        return fmt.Errorf("smtp data close: %w", err)
    }
    return c.Quit()
}

// buildMessage renders an RFC 5322 message with a multipart/alternative
// body.  Parts are quoted-printable so non-ASCII text survives 7-bit relays.
func buildMessage(from string, m Message) ([]byte, error) {
    var buf bytes.Buffer
    mw := multipart.NewWriter(&buf)

    fmt.Fprintf(&buf, "From: %s\r\n", from)
    fmt.Fprintf(&buf, "To: %s\r\n", m.To)
    fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
    fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
    buf.WriteString("MIME-Version: 1.0\r\n")
    fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

    parts := []struct{ ctype, body string }{
        {"text/plain; charset=utf-8", m.Text},
        {"text/html; charset=utf-8", m.HTML},
    }
    for _, p := range parts {
        if p.body == "" {
            continue
        }
        pw, err := mw.CreatePart(textproto.MIMEHeader{
            "Content-Type":              {p.ctype},
            "Content-Transfer-Encoding": {"quoted-printable"},
        })
        if err != nil {
            return nil, err
        }
        qp := quotedprintable.NewWriter(pw)
        if _, err := qp.Write([]byte(p.body)); err != nil {
            return nil, err
        }
        if err := qp.Close(); err != nil {
            return nil, err
        }
    }
    if err := mw.Close(); err != nil {
        return nil, err
    }
    return buf.Bytes(), nil
}
