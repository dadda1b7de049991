package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"drivebook/internal/logger"
	"drivebook/internal/metrics"
)

const queueKey = "emails"

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Send(ctx context.Context, to, name, subject, body string) error {
	job := EmailJob{
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Tries:   0,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal email job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", to, err)
		return err
	}

	logger.Infof("Email queued: %s to %s", subject, to)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Email service started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email service stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		// redis.Nil is an empty queue. Anything else means redis is
		// unreachable; back off instead of spinning on the error.
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Errorf("Failed to poll email queue: %v", err)
			time.Sleep(time.Second)
		}
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	job.Tries++
	logger.Infof("Sending email to %s (attempt %d)", job.To, job.Tries)
	if err := s.sendNow(job); err != nil {
		logger.Errorf("Failed to send email to %s: %v", job.To, err)
		metrics.RecordEmail("smtp", "failed")

		if job.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying email to %s (attempt %d)", job.To, job.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after 3 attempts", job.To)
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail("smtp", "sent")
	logger.Infof("Email sent successfully to %s", job.To)
}

func (s *Service) sendNow(job EmailJob) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", job.To)
	message += fmt.Sprintf("Subject: %s\r\n", job.Subject)
	message += "\r\n" + job.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{job.To}, []byte(message))
}

func (s *Service) saveFailed(job EmailJob, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), queueKey+":failed", data)
	logger.Errorf("Email moved to failed queue: %s", job.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingReceived(ctx context.Context, to, name, vehicle string, pickup time.Time) error {
	subject := "Booking Received - " + vehicle
	body := fmt.Sprintf(`Hi %s,

We received your booking request for %s, pickup on %s.
The rental company will confirm it shortly.

- DriveBook`, name, vehicle, pickup.Format("Jan 2, 2006 at 15:04"))

	return s.Send(ctx, to, name, subject, body)
}

func (s *Service) SendBookingConfirmed(ctx context.Context, to, name, vehicle string, pickup time.Time) error {
	subject := "Booking Confirmed - " + vehicle
	body := fmt.Sprintf(`Hi %s,

Your booking for %s is confirmed. Pickup on %s.
Bring your national ID and driver's license.

- DriveBook`, name, vehicle, pickup.Format("Jan 2, 2006 at 15:04"))

	return s.Send(ctx, to, name, subject, body)
}

func (s *Service) SendBookingCancelled(ctx context.Context, to, name, vehicle string) error {
	subject := "Booking Cancelled - " + vehicle
	body := fmt.Sprintf(`Hi %s,

Your booking for %s has been cancelled.

- DriveBook`, name, vehicle)

	return s.Send(ctx, to, name, subject, body)
}

func (s *Service) SendWithdrawalReviewed(ctx context.Context, to, name, status string, amountCents int64) error {
	subject := "Withdrawal Request " + status
	body := fmt.Sprintf(`Hi %s,

Your withdrawal request for %.2f has been %s.

- DriveBook`, name, float64(amountCents)/100, status)

	return s.Send(ctx, to, name, subject, body)
}
