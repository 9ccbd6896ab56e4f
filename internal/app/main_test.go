package app

import (
	"testing"

	"go.uber.org/goleak"
)

// Abandoned mutations must still exit once their context is cancelled or
// their blocking call returns.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
