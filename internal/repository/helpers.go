package repository

import (
	"time"

	"project_atendimento/internal/entities"
)

// nullable maps an absent provider id to SQL NULL so it never hits the unique index
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func msgType(msg *entities.Message) string {
	if msg.Type == "" {
		return entities.ContentTypeText
	}
	return msg.Type
}
