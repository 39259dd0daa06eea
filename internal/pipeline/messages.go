package pipeline

// Canned replies returned instead of errors.
const (
	MsgNoTranscript      = "Please upload a meeting transcript first so I can help you analyze it."
	MsgTooShort          = "The transcript appears to be too short or empty to provide a meaningful summary."
	MsgSummaryFailed     = "I apologize, but I encountered an error while summarizing the transcript. Please try again."
	MsgLongSummaryFailed = "I encountered an error while processing the long transcript. Please try with a shorter transcript."
	MsgAnswerFailed      = "I apologize, but I encountered an error while processing your question. Please try rephrasing your question."
	MsgChatFailed        = "I'm here to help you analyze your meeting transcript! You can ask me to summarize the meeting, answer specific questions, or just chat about the content."
	MsgGeneric           = "I apologize, but I encountered an error while processing your message. Please try again."
)
