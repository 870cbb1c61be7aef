package ws

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalFrame_WireShape(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	data, err := marshalFrame(&buf, OutgoingEvent{
		Type:    EventReceiveMessage,
		Payload: map[string]string{"text": "hello"},
	})

	req.NoError(err)
	// Text frames carry a single JSON object with no trailing newline.
	req.NotEqual(byte('\n'), data[len(data)-1])
	var decoded struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	req.NoError(json.Unmarshal(data, &decoded))
	req.Equal(string(EventReceiveMessage), decoded.Type)
	req.Equal("hello", decoded.Payload["text"])
}

func TestMarshalFrame_ReusesBuffer(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	first, err := marshalFrame(&buf, OutgoingEvent{Type: EventUserOnline, Payload: "long payload long payload"})
	req.NoError(err)
	firstLen := len(first)

	second, err := marshalFrame(&buf, OutgoingEvent{Type: EventUserOnline, Payload: "x"})
	req.NoError(err)

	// A shorter second frame must not carry leftovers from the first.
	req.Less(len(second), firstLen)
	req.True(json.Valid(second))
}

func TestMarshalFrame_UnencodablePayload(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	_, err := marshalFrame(&buf, OutgoingEvent{Type: EventUserOnline, Payload: make(chan int)})

	req.Error(err)
}
