package collab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	msg, err := parseInbound([]byte(`{"type":"op.submit","userId":"spoofed","payload":{}}`))
	require.NoError(t, err)
	assert.Equal(t, TypeOpSubmit, msg.Type)

	for _, frame := range []string{
		`not json`,
		`{"payload":{}}`,
		`{"type":"op.broadcast"}`,
		`{"type":"doc.sync"}`,
	} {
		_, err := parseInbound([]byte(frame))
		assert.Error(t, err, frame)
	}
}
