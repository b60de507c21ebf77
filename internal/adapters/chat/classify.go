package chat

import (
	"strconv"
	"strings"

	"github.com/bridgefs/bridgefs/internal/vfs"
)

// Kind is the node type of a classified chat-schema path.
type Kind int

const (
	KindInvalid Kind = iota
	KindRoot
	KindConversationList
	KindConversation
	KindMessageFile
	KindModelList
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindConversationList:
		return "conversation-list"
	case KindConversation:
		return "conversation"
	case KindMessageFile:
		return "message-file"
	case KindModelList:
		return "model-list"
	case KindModel:
		return "model"
	default:
		return "invalid"
	}
}

// Node is the typed descriptor of a classified path. Ordinal is the
// 1-based display ordinal embedded in a message filename; 0 means the
// filename carried no parsable ordinal. The adapter converts to 0-based
// storage positions at the boundary.
type Node struct {
	Kind           Kind
	ConversationID string
	ModelName      string
	Ordinal        int
}

// Top-level collection names of the chat schema.
const (
	collectionConversations = "conversations"
	collectionModels        = "models"
)

// Classify maps a virtual path to its node descriptor. Total function:
// every string maps to exactly one Node, malformed input classifies as
// KindInvalid, never an error. No I/O, no side effects.
//
// Grammar: / · /conversations · /conversations/{id} ·
// /conversations/{id}/{ordinal:03}.txt · /models · /models/{name}.
func Classify(path string) Node {
	segments := vfs.SplitPath(path)

	switch len(segments) {
	case 0:
		return Node{Kind: KindRoot}
	case 1:
		switch segments[0] {
		case collectionConversations:
			return Node{Kind: KindConversationList}
		case collectionModels:
			return Node{Kind: KindModelList}
		}
	case 2:
		switch segments[0] {
		case collectionConversations:
			return Node{Kind: KindConversation, ConversationID: segments[1]}
		case collectionModels:
			// Model ids are opaque and may contain dots
			// ("gpt-3.5-turbo"); the segment is never decomposed.
			return Node{Kind: KindModel, ModelName: segments[1]}
		}
	case 3:
		if segments[0] == collectionConversations {
			return Node{
				Kind:           KindMessageFile,
				ConversationID: segments[1],
				Ordinal:        ordinalFromName(segments[2]),
			}
		}
	}

	return Node{Kind: KindInvalid}
}

// MessageFileName renders the leaf filename for a 1-based ordinal.
func MessageFileName(ordinal int) string {
	return strings.Join([]string{pad3(ordinal), "txt"}, ".")
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// ordinalFromName decomposes a message filename into its display ordinal.
// The extension is stripped and the base parsed as a positive integer;
// anything else yields the 0 sentinel so listings can skip invalid
// entries silently instead of failing.
func ordinalFromName(name string) int {
	base := stripExtension(name)
	n, err := strconv.Atoi(base)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func stripExtension(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}
