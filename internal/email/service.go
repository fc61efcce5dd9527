package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"time"

	"github.com/Puru-codes/parking-lot/internal/logger"
	"github.com/Puru-codes/parking-lot/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"

	KindBookingConfirmation = "booking_confirmation"
	KindReleaseReceipt      = "release_receipt"
	KindTest                = "test"

	defaultMaxTries   = 3
	defaultRetryDelay = 5 * time.Second
	popTimeout        = 2 * time.Second
)

type EmailJob struct {
	Kind    string    `json:"kind"`
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

	maxTries   int
	retryDelay time.Duration
	deliver    func(EmailJob) error
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr: redisAddr,
	}), fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass)
}

func NewWithClient(rdb *redis.Client, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass string) *Service {
	s := &Service{
		redis:      rdb,
		from:       fromEmail,
		fromName:   fromName,
		smtpHost:   smtpHost,
		smtpPort:   smtpPort,
		smtpUser:   smtpUser,
		smtpPass:   smtpPass,
		maxTries:   defaultMaxTries,
		retryDelay: defaultRetryDelay,
	}
	s.deliver = s.sendNow
	return s
}

// Send queues a message for the worker started by Start.
func (s *Service) Send(ctx context.Context, kind, to, name, subject, body string) error {
	job := EmailJob{
		Kind:    kind,
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    body,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Error("failed to marshal email job", "error", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Error("failed to queue email", "to", to, "kind", kind, "error", err)
		return err
	}

	logger.Info("email queued", "to", to, "kind", kind)
	return nil
}

// Start consumes the queue until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	logger.Info("email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, popTimeout, queueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			logger.Warn("email queue read failed", "error", err)
			time.Sleep(popTimeout)
		}
		return
	}

	var job EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Error("bad email job", "error", err)
		return
	}

	job.Tries++
	if err := s.deliver(job); err != nil {
		metrics.RecordEmail(job.Kind, "failed")
		logger.Error("failed to send email", "to", job.To, "attempt", job.Tries, "error", err)

		if job.Tries < s.maxTries {
			s.requeue(ctx, job)
		} else {
			s.saveFailed(job, err)
		}
		return
	}

	metrics.RecordEmail(job.Kind, "success")
	logger.Info("email sent", "to", job.To, "kind", job.Kind)
}

func (s *Service) requeue(ctx context.Context, job EmailJob) {
	if s.retryDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(s.retryDelay):
		}
	}

	data, _ := json.Marshal(job)
	if err := s.redis.LPush(context.Background(), queueKey, data).Err(); err != nil {
		logger.Error("failed to requeue email", "to", job.To, "error", err)
		return
	}
	logger.Info("retrying email", "to", job.To, "next_attempt", job.Tries+1)
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
	s.redis.LPush(context.Background(), failedKey, data)
	logger.Error("email moved to failed queue", "to", job.To, "attempts", job.Tries)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	metrics.SetEmailQueueLength(length)
	return length
}

func (s *Service) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func (s *Service) Close() error {
	return s.redis.Close()
}

func (s *Service) SendBookingConfirmation(ctx context.Context, to, name, lotName string, spotNumber int, vehicleNumber string, at time.Time) error {
	subject := "Parking Confirmed - " + lotName
	body := fmt.Sprintf(`Hi %s,

Your parking spot is reserved.

Lot: %s
Spot: #%d
Vehicle: %s
Parked at: %s

Release the spot from your dashboard when you leave.

- Parking Team`, name, lotName, spotNumber, vehicleNumber, at.Format("Jan 2, 2006 at 3:04 PM"))

	return s.Send(ctx, KindBookingConfirmation, to, name, subject, body)
}

func (s *Service) SendReleaseReceipt(ctx context.Context, to, name, lotName string, spotNumber int, vehicleNumber, duration string, cost float64) error {
	subject := "Parking Receipt - " + lotName
	body := fmt.Sprintf(`Hi %s,

Thanks for parking with us.

Lot: %s
Spot: #%d
Vehicle: %s
Duration: %s
Amount: %.2f

- Parking Team`, name, lotName, spotNumber, vehicleNumber, duration, cost)

	return s.Send(ctx, KindReleaseReceipt, to, name, subject, body)
}
