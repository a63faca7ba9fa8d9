package smtp

import (
	"bytes"
	"net/smtp"

	"alumni-connect/config"
)

// Mailer 连接通知邮件发送接口，测试里用假实现替换
type Mailer interface {
	SendConnectionRequest(m ConnectionRequestMail) error
	SendConnectionAccepted(m ConnectionAcceptedMail) error
}

// ConnectionRequestMail 连接请求通知的数据
type ConnectionRequestMail struct {
	To                string
	RequestedName     string
	RequesterName     string
	RequesterRole     string
	RequesterCompany  string
	RequesterLocation string
	RequesterGradYear int
	Message           string
	RequestLink       string
}

// ConnectionAcceptedMail 连接被接受通知的数据
type ConnectionAcceptedMail struct {
	To            string
	RequesterName string
	AcceptedName  string
	ContactEmail  string
	LinkedinURL   string
}

// Client 基于net/smtp的Mailer实现
type Client struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewClient 用配置创建SMTP客户端
func NewClient(cfg *config.Config) *Client {
	return &Client{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
	}
}

// SendConnectionRequest 发送连接请求通知
func (s *Client) SendConnectionRequest(m ConnectionRequestMail) error {
	var body bytes.Buffer
	if err := connectionRequestTmpl.Execute(&body, m); err != nil {
		return err
	}
	return s.send(m.To, "[校友网络] 新的连接请求", body.Bytes())
}

// SendConnectionAccepted 发送连接被接受通知
func (s *Client) SendConnectionAccepted(m ConnectionAcceptedMail) error {
	var body bytes.Buffer
	if err := connectionAcceptedTmpl.Execute(&body, m); err != nil {
		return err
	}
	return s.send(m.To, "[校友网络] 你的连接请求已被接受", body.Bytes())
}

func (s *Client) send(to, subject string, htmlBody []byte) error {
	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n")
	message = append(message, htmlBody...)
	message = append(message, []byte("\r\n")...)

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	return smtp.SendMail(
		s.host+":"+s.port,
		auth,
		s.from,
		[]string{to},
		message,
	)
}
