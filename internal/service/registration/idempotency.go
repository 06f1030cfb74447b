package registration

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
)

// DeriveIdempotencyKey builds the settlement key server-side from the
// authenticated student and the active semester, so a client retry (or a
// double-submit from a second tab) always lands on the same key without
// the client having to supply one.
func DeriveIdempotencyKey(studentID, semesterID uuid.UUID) string {
	h := sha256.New()
	h.Write([]byte(studentID.String()))
	h.Write([]byte("|"))
	h.Write([]byte(semesterID.String()))
	return fmt.Sprintf("%x", h.Sum(nil))
}
