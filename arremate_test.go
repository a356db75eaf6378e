package arremate_test

import (
	"fmt"
	"testing"

	"github.com/fcoelho/arremate"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := arremate.Errorf(arremate.ENOTFOUND, "rule for %q not found", "example.com.br")

	assert.Equal(t, arremate.ENOTFOUND, arremate.ErrorCode(err))
	assert.Equal(t, "rule for \"example.com.br\" not found", arremate.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, arremate.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, arremate.EINTERNAL, arremate.ErrorCode(fmt.Errorf("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, arremate.ErrorMessage(nil))
}
