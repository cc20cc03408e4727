package schema

// Messages is the ordered conversation exchanged with the LLM for one
// question. It owns typed append methods so callers never construct raw maps.
type Messages struct {
	Messages []Message
}

// NewMessages returns a Messages initialised with the given messages.
// Called with no arguments it returns an empty Messages ready for use.
func NewMessages(msgs ...Message) Messages {
	if len(msgs) == 0 {
		return Messages{Messages: make([]Message, 0)}
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Messages{Messages: out}
}

// NewConversation starts a conversation with a system prompt and the user's
// question. An empty system prompt is omitted.
func NewConversation(systemPrompt, userMessage string) Messages {
	conv := NewMessages()
	if systemPrompt != "" {
		conv.AddSystem(systemPrompt)
	}
	conv.AddUser(userMessage)
	return conv
}

// AddSystem appends a system message.
func (mh *Messages) AddSystem(content string) {
	mh.Messages = append(mh.Messages, NewSystemMessage(content))
}

// AddUser appends a user message.
func (mh *Messages) AddUser(content string) {
	mh.Messages = append(mh.Messages, NewUserMessage(content))
}

// AddAssistant appends an assistant message with optional tool calls and
// reasoning content.
func (mh *Messages) AddAssistant(content *string, toolCalls []ToolCall, reasoningContent *string) {
	mh.Messages = append(mh.Messages, NewAssistantMessage(content, toolCalls, reasoningContent))
}

// AddToolResult appends a tool-result message.
func (mh *Messages) AddToolResult(toolCallID, toolName, result string) {
	mh.Messages = append(mh.Messages, NewToolResultMessage(toolCallID, toolName, result))
}

// Len returns the number of messages.
func (mh *Messages) Len() int { return len(mh.Messages) }

// LastAssistantText returns the text of the most recent assistant message
// that carried any, or "".
func (mh *Messages) LastAssistantText() string {
	for i := len(mh.Messages) - 1; i >= 0; i-- {
		m := mh.Messages[i]
		if m.Role != RoleAssistant {
			continue
		}
		if s := m.Text(); s != "" {
			return s
		}
	}
	return ""
}

// Clone returns a copy of mh with an independent backing slice.
func (mh *Messages) Clone() Messages {
	cloned := make([]Message, len(mh.Messages))
	copy(cloned, mh.Messages)
	return Messages{Messages: cloned}
}
