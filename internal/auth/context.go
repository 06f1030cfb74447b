package auth

import (
	"context"

	"github.com/google/uuid"
)

type studentIDKey struct{}

func ContextWithStudentID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, studentIDKey{}, id)
}

func StudentIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(studentIDKey{}).(uuid.UUID)
	return id, ok
}
