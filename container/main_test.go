package container_test

import (
	"io"
	"os"
	"testing"

	"github.com/plus3/sparsecs/internal/diag"
)

func TestMain(m *testing.M) {
	// Precondition tests log at error level before panicking.
	diag.Logger().SetOutput(io.Discard)
	os.Exit(m.Run())
}
