package middleware

import (
	"testing"

	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.NewNop()
}
