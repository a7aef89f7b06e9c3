package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConversationDefaults(t *testing.T) {
	c, err := NewConversation("buyer", "seller", ItemTypeProduct, "item-1")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"buyer", "seller"}, c.Participants)
	assert.Equal(t, map[string]int{"buyer": 0, "seller": 0}, c.UnreadCount)
	assert.Equal(t, ItemTypeProduct, c.ItemType)
	assert.Equal(t, "item-1", c.ItemID)
	assert.True(t, c.IsActive)
	assert.Nil(t, c.LastMessageID)
}

func TestNewConversationRejectsSelfChat(t *testing.T) {
	_, err := NewConversation("u1", "u1", ItemTypeClassified, "item-1")
	assert.ErrorIs(t, err, ErrSameParticipant)
}

func TestNewConversationRejectsUnknownItemType(t *testing.T) {
	_, err := NewConversation("u1", "u2", ItemType("Car"), "item-1")
	assert.ErrorIs(t, err, ErrUnknownItemType)
}

func TestNewConversationRequiresFields(t *testing.T) {
	_, err := NewConversation("", "u2", ItemTypeProduct, "item-1")
	assert.Error(t, err)
	_, err = NewConversation("u1", "u2", ItemTypeProduct, "")
	assert.Error(t, err)
}

func TestItemTypeValid(t *testing.T) {
	assert.True(t, ItemTypeProduct.Valid())
	assert.True(t, ItemTypeClassified.Valid())
	assert.False(t, ItemType("").Valid())
	assert.False(t, ItemType("product").Valid()) // case sensitive
}

func TestConversationParticipantHelpers(t *testing.T) {
	c := &Conversation{
		Participants: []string{"u1", "u2"},
		UnreadCount:  map[string]int{"u1": 3},
	}

	assert.True(t, c.HasParticipant("u1"))
	assert.False(t, c.HasParticipant("u3"))
	assert.Equal(t, "u2", c.OtherParticipant("u1"))
	assert.Equal(t, "u1", c.OtherParticipant("u2"))
	assert.Equal(t, 3, c.UnreadFor("u1"))
	assert.Equal(t, 0, c.UnreadFor("u2"))
}

func TestConversationNilReceivers(t *testing.T) {
	var c *Conversation
	assert.False(t, c.HasParticipant("u1"))
	assert.Equal(t, "", c.OtherParticipant("u1"))
	assert.Equal(t, 0, c.UnreadFor("u1"))
}
