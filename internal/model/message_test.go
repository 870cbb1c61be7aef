package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageStatus_ForwardOnly(t *testing.T) {
	req := require.New(t)

	// Forward moves, delivered optional.
	req.True(MessageStatusSent.CanTransitionTo(MessageStatusDelivered))
	req.True(MessageStatusSent.CanTransitionTo(MessageStatusRead))
	req.True(MessageStatusDelivered.CanTransitionTo(MessageStatusRead))

	// Never backwards, never to itself.
	req.False(MessageStatusRead.CanTransitionTo(MessageStatusDelivered))
	req.False(MessageStatusRead.CanTransitionTo(MessageStatusSent))
	req.False(MessageStatusDelivered.CanTransitionTo(MessageStatusSent))
	req.False(MessageStatusSent.CanTransitionTo(MessageStatusSent))
}

func TestParseKind(t *testing.T) {
	req := require.New(t)

	for _, valid := range []string{"client", "vendor", "planner"} {
		kind, err := ParseKind(valid)
		req.NoError(err)
		req.Equal(ParticipantKind(valid), kind)
	}

	for _, invalid := range []string{"", "admin", "Client", "CLIENT", "customer"} {
		_, err := ParseKind(invalid)
		req.Error(err, "kind %q must be rejected", invalid)
	}
}

func TestParseNotificationType(t *testing.T) {
	req := require.New(t)

	for _, valid := range []string{"message", "consultation", "booking", "system"} {
		typ, err := ParseNotificationType(valid)
		req.NoError(err)
		req.Equal(NotificationType(valid), typ)
	}

	_, err := ParseNotificationType("marketing")
	req.Error(err)
}
