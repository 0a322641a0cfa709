package metachat

// SystemPrompt is a named system-prompt definition. Immutable once
// registered. Meta and enhanced prompts share this shape; which role a
// prompt plays is decided by the PromptPair a session is created with.
type SystemPrompt struct {
	ID      int
	Name    string
	Message string // the instruction text
	Model   string // backend model identifier
}

// PromptRegistry holds named system-prompt definitions. It is process-wide
// configuration state, initialized at startup from built-in defaults plus
// caller-registered entries, and read-mostly thereafter.
type PromptRegistry interface {
	// Register adds a prompt. It fails with ErrDuplicateID if the id is
	// already present; the first registration remains unchanged.
	Register(p SystemPrompt) error

	// Get returns the prompt with the given id, or ErrNotFound.
	Get(id int) (SystemPrompt, error)

	// List returns all prompts in insertion order.
	List() []SystemPrompt
}

// DefaultModel is the backend model used by the built-in prompts.
const DefaultModel = "gpt-4o"

// DefaultPrompts returns the built-in system prompts: two meta/enhanced
// pairs, one for sales conversations (ids 1 and 2) and one for technical
// support (ids 3 and 4).
func DefaultPrompts() []SystemPrompt {
	return []SystemPrompt{
		{
			ID:   1,
			Name: "Sales Manager Advisor",
			Message: "You are a sales manager looking at a chat between a sales assistant and an inquirer. " +
				"Provide specific, actionable advice to the sales assistant on how to better understand the " +
				"customer's needs, address objections or concerns, highlight relevant product benefits, and " +
				"move the conversation toward a successful close. Be direct and specific, referring to exact " +
				"points in the conversation.",
			Model: DefaultModel,
		},
		{
			ID:   2,
			Name: "Enhanced Sales Assistant",
			Message: "You are a professional sales assistant who has just received feedback from your sales " +
				"manager. Implement this advice in your next response to the customer while maintaining a " +
				"natural, friendly tone. Do not mention that you received advice or that you are an AI. Focus " +
				"on understanding the customer's needs, addressing their concerns, and guiding them toward a " +
				"solution.",
			Model: DefaultModel,
		},
		{
			ID:   3,
			Name: "Technical Support Manager",
			Message: "You are a technical support manager reviewing a conversation between a support agent and " +
				"a customer. Provide specific guidance to help the agent diagnose the issue more efficiently, " +
				"explain technical concepts in accessible language, suggest troubleshooting steps the agent " +
				"may have missed, and improve overall customer satisfaction. Be concrete and actionable.",
			Model: DefaultModel,
		},
		{
			ID:   4,
			Name: "Enhanced Technical Support",
			Message: "You are a technical support specialist who has received guidance from your support " +
				"manager. Implement this advice in your response to the customer's issue while maintaining a " +
				"helpful and patient tone. Explain technical concepts clearly, provide step-by-step " +
				"instructions, and ensure the customer feels supported. Do not mention that you received " +
				"advice or that you are an AI.",
			Model: DefaultModel,
		},
	}
}
