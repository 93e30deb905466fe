package export

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Keep loader warnings off stderr during test runs.
	os.Setenv("SK_TEST_MODE", "1")

	os.Exit(m.Run())
}
