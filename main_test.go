package moize_test

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no expiration timer goroutine outlives the tests.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
