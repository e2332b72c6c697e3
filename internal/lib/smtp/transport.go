package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/config"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
)

// Transport устанавливает аутентифицированные STARTTLS-соединения
// с почтовым сервером. Реквизиты фиксируются при создании, само
// соединение открывается заново на каждый вызов Connect.
type Transport struct {
	addr     string
	host     string
	username string
	password string
	log      *slog.Logger
}

// NewTransport создает Transport из настроек почтового блока конфига.
func NewTransport(cfg *config.Config, log *slog.Logger) *Transport {
	return &Transport{
		addr:     net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		username: cfg.SMTPUser,
		password: cfg.SMTPPass,
		log:      log,
	}
}

// Connect открывает соединение с SMTP сервером, выполняет STARTTLS
// и аутентификацию. Сервер без поддержки STARTTLS отклоняется.
func (t *Transport) Connect() (Client, error) {
	conn, err := net.Dial("tcp", t.addr)
	if err != nil {
		t.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		t.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err = t.handshake(client); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, err
	}

	return &clientConn{client: client}, nil
}

// handshake переводит уже открытое соединение в TLS и проходит
// аутентификацию. Закрытие соединения при ошибке остается за вызывающим.
func (t *Transport) handshake(client *smtp.Client) error {
	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.log.Error("SMTP server does not support STARTTLS")
		return fmt.Errorf("smtp server does not support STARTTLS")
	}

	tlsConfig := &tls.Config{
		ServerName: t.host,
		MinVersion: tls.VersionTLS12,
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		t.log.Error("failed to start TLS", sl.Err(err))
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.username, t.password, t.host)
	if err := client.Auth(auth); err != nil {
		t.log.Error("smtp auth failed", sl.Err(err))
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	return nil
}

// GetSMTPUser возвращает имя пользователя SMTP.
func (t *Transport) GetSMTPUser() string {
	return t.username
}

// clientConn адаптирует *smtp.Client к интерфейсу Client.
type clientConn struct {
	client *smtp.Client
}

func (c *clientConn) Mail(from string) error { return c.client.Mail(from) }

func (c *clientConn) Rcpt(to string) error { return c.client.Rcpt(to) }

func (c *clientConn) Data() (io.WriteCloser, error) { return c.client.Data() }

func (c *clientConn) Quit() error { return c.client.Quit() }

func (c *clientConn) Close() error { return c.client.Close() }
