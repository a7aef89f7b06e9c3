package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageTrimsAndRecordsSenderAsReader(t *testing.T) {
	m, err := NewMessage("conv-1", "user-1", "  hello there  ")
	require.NoError(t, err)

	assert.Equal(t, "hello there", m.Content)
	assert.Equal(t, "conv-1", m.ConversationID)
	assert.Equal(t, "user-1", m.SenderID)
	assert.Equal(t, []string{"user-1"}, m.ReadBy)
	assert.False(t, m.IsDeleted)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestNewMessageRejectsEmptyContent(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := NewMessage("conv-1", "user-1", content)
		assert.ErrorIs(t, err, ErrEmptyContent, "content %q", content)
	}
}

func TestNewMessageBoundsContentLength(t *testing.T) {
	atLimit := strings.Repeat("a", MaxContentLength)
	m, err := NewMessage("conv-1", "user-1", atLimit)
	require.NoError(t, err)
	assert.Len(t, m.Content, MaxContentLength)

	_, err = NewMessage("conv-1", "user-1", atLimit+"a")
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestNewMessageCountsRunesNotBytes(t *testing.T) {
	// multi-byte runes at the limit must still be accepted
	content := strings.Repeat("é", MaxContentLength)
	_, err := NewMessage("conv-1", "user-1", content)
	assert.NoError(t, err)

	_, err = NewMessage("conv-1", "user-1", content+"é")
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestNewMessageRequiresIdentifiers(t *testing.T) {
	_, err := NewMessage("", "user-1", "hi")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = NewMessage("conv-1", "", "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestMessageReadByUser(t *testing.T) {
	m := Message{ReadBy: []string{"a", "b"}}
	assert.True(t, m.ReadByUser("a"))
	assert.True(t, m.ReadByUser("b"))
	assert.False(t, m.ReadByUser("c"))
}
