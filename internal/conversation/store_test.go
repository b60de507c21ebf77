package conversation

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

func TestCreateAllocatesFreshID(t *testing.T) {
	s := NewStore()

	id := s.Create(NewConversationID)
	assert.NotEqual(t, NewConversationID, id)
	assert.True(t, s.Exists(id))

	// Explicit ids are kept as-is and creation is idempotent.
	assert.Equal(t, "c1", s.Create("c1"))
	assert.Equal(t, "c1", s.Create("c1"))
	assert.True(t, s.Exists("c1"))
}

func TestAppendExchangeOrdering(t *testing.T) {
	s := NewStore()
	s.Create("c1")

	s.AppendExchange("c1", "hello", "hi there")
	s.AppendExchange("c1", "how are you", "fine")
	s.AppendExchange("c1", "bye", "goodbye")

	require.Equal(t, 6, s.Len("c1"))

	msgs, err := s.Messages("c1")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hi there", msgs[1].Content)
	assert.Equal(t, "goodbye", msgs[5].Content)
}

func TestMessageOrdinals(t *testing.T) {
	s := NewStore()
	s.Create("c1")
	s.AppendExchange("c1", "q", "a")

	first, err := s.Message("c1", 1)
	require.NoError(t, err)
	assert.Equal(t, "q", first.Content)

	second, err := s.Message("c1", 2)
	require.NoError(t, err)
	assert.Equal(t, "a", second.Content)

	// Out of range is NotFound, not empty content.
	_, err = s.Message("c1", 0)
	assert.ErrorIs(t, err, vfs.ErrNotFound)
	_, err = s.Message("c1", 3)
	assert.ErrorIs(t, err, vfs.ErrNotFound)
	_, err = s.Message("missing", 1)
	assert.ErrorIs(t, err, vfs.ErrNotFound)
}

func TestDeleteMessageShiftsOrdinals(t *testing.T) {
	s := NewStore()
	s.Create("c1")
	s.AppendExchange("c1", "m1", "m2")
	s.AppendExchange("c1", "m3", "m4")

	require.NoError(t, s.DeleteMessage("c1", 2))
	require.Equal(t, 3, s.Len("c1"))

	shifted, err := s.Message("c1", 2)
	require.NoError(t, err)
	assert.Equal(t, "m3", shifted.Content)

	_, err = s.Message("c1", 4)
	assert.ErrorIs(t, err, vfs.ErrNotFound)
}

func TestDeleteConversation(t *testing.T) {
	s := NewStore()
	s.Create("c1")
	s.AppendExchange("c1", "q", "a")

	require.NoError(t, s.DeleteConversation("c1"))
	assert.False(t, s.Exists("c1"))
	assert.ErrorIs(t, s.DeleteConversation("c1"), vfs.ErrNotFound)
}

func TestMessageFormat(t *testing.T) {
	s := NewStore()
	s.Create("c1")
	s.AppendExchange("c1", "hello", "hi")

	msg, err := s.Message("c1", 1)
	require.NoError(t, err)
	line := msg.Format()
	assert.Contains(t, line, "[user]")
	assert.Contains(t, line, "hello")
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} `, line)
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore()
	s.Create("c1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AppendExchange("c1", "q", "a")
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, s.Len("c1"))
}
