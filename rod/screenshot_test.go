package rod_test

import (
	"testing"
	"time"

	"github.com/fcoelho/arremate/rod"
	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 11, 12, 47, 20, 0, time.UTC)
	assert.Equal(t, "www_example_com_20250311_124720.png", rod.Filename("www.example.com", ts))
}
