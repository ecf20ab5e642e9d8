package contact

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrdesk/internal/domain/notifications"
)

// Message is one contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type Input struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid contact field: %s", e.Field)
}

type Service struct {
	db     *pgxpool.Pool
	mailer notifications.Mailer
	inbox  string
}

func NewService(db *pgxpool.Pool, mailer notifications.Mailer, inbox string) *Service {
	return &Service{db: db, mailer: mailer, inbox: inbox}
}

// Submit stores the message and forwards it to the configured inbox. The
// forward is best-effort; the stored row is what HR works from.
func (s *Service) Submit(ctx context.Context, input Input) (*Message, error) {
	msg := Message{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Subject: strings.TrimSpace(input.Subject),
		Body:    strings.TrimSpace(input.Body),
	}
	if msg.Name == "" {
		return nil, &ValidationError{Field: "name"}
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return nil, &ValidationError{Field: "email"}
	}
	if msg.Subject == "" {
		return nil, &ValidationError{Field: "subject"}
	}
	if msg.Body == "" {
		return nil, &ValidationError{Field: "body"}
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		msg.Name, msg.Email, msg.Subject, msg.Body,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	if s.mailer != nil && s.inbox != "" {
		text := fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Body)
		if err := s.mailer.Send(ctx, s.inbox, "[Contact] "+msg.Subject, "", text); err != nil {
			slog.Warn("contact forward failed", "err", err, "message_id", msg.ID)
		}
	}
	return &msg, nil
}

// List returns stored messages, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Message, int, error) {
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contact messages: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, subject, body, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan contact message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}
