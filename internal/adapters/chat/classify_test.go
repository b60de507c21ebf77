package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Node
	}{
		{"", Node{Kind: KindRoot}},
		{"/", Node{Kind: KindRoot}},
		{"conversations", Node{Kind: KindConversationList}},
		{"/conversations/", Node{Kind: KindConversationList}},
		{"conversations/c1", Node{Kind: KindConversation, ConversationID: "c1"}},
		{"conversations/c1/001.txt", Node{Kind: KindMessageFile, ConversationID: "c1", Ordinal: 1}},
		{"conversations/c1/042.txt", Node{Kind: KindMessageFile, ConversationID: "c1", Ordinal: 42}},
		{"\\conversations\\c1\\002.txt", Node{Kind: KindMessageFile, ConversationID: "c1", Ordinal: 2}},
		{"models", Node{Kind: KindModelList}},
		{"models/claude-3", Node{Kind: KindModel, ModelName: "claude-3"}},

		// Dots in a model id are part of the name, not an extension.
		{"models/gpt-3.5-turbo", Node{Kind: KindModel, ModelName: "gpt-3.5-turbo"}},
		{"models/claude-3.txt", Node{Kind: KindModel, ModelName: "claude-3.txt"}},

		// Non-numeric or non-positive ordinals classify with the 0
		// sentinel, not an error.
		{"conversations/c1/notes.txt", Node{Kind: KindMessageFile, ConversationID: "c1", Ordinal: 0}},
		{"conversations/c1/000.txt", Node{Kind: KindMessageFile, ConversationID: "c1", Ordinal: 0}},
		{"conversations/c1/-01.txt", Node{Kind: KindMessageFile, ConversationID: "c1", Ordinal: 0}},

		// Unknown collections and excess depth are invalid.
		{"bogus", Node{Kind: KindInvalid}},
		{"bogus/x", Node{Kind: KindInvalid}},
		{"models/a/b", Node{Kind: KindInvalid}},
		{"conversations/c1/001.txt/extra", Node{Kind: KindInvalid}},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.path), "path %q", tc.path)
	}
}

// Classification is total: arbitrary garbage still yields exactly one
// descriptor and never panics.
func TestClassifyTotality(t *testing.T) {
	garbage := []string{
		"...", "../../etc/passwd", "conversations//001.txt//",
		"\x00\xff", "models/.", "////", "conversations/c1/01txt",
	}
	for _, p := range garbage {
		node := Classify(p)
		assert.GreaterOrEqual(t, int(node.Kind), int(KindInvalid), "path %q", p)
	}
}

func TestMessageFileName(t *testing.T) {
	assert.Equal(t, "001.txt", MessageFileName(1))
	assert.Equal(t, "042.txt", MessageFileName(42))
	assert.Equal(t, "100.txt", MessageFileName(100))
	assert.Equal(t, "1000.txt", MessageFileName(1000))
}
