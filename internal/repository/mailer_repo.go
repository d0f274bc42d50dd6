package repository

import (
	"context"
	"errors"
)

var ErrSendFailed = errors.New("failed to send report")

// Delivery describes what the relay accepted.
type Delivery struct {
	MessageID string
	Recipient string
}

// ReportMailer delivers one rendered report.
type ReportMailer interface {
	Send(ctx context.Context, subject, htmlBody string) (*Delivery, error)
}
