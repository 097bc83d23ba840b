package constants

const (
	MsgWelcome           = "Welcome to the UAV Log Chat API"
	MsgHealthy           = "Service is healthy"
	MsgUnhealthy         = "Service is degraded"
	MsgLogParsed         = "Log file parsed successfully"
	MsgLogFound          = "Log summary retrieved"
	MsgChatResponse      = "Chat response generated"
	MsgChatCleared       = "Chat history cleared successfully"
	MsgUnsupportedFile   = "Only .bin files are supported"
	MsgLogNotFound       = "Log file not found"
	MsgConversationGone  = "Conversation not found"
	MsgEmptyMessage      = "Message must not be empty"
	MsgMissingFile       = "Multipart field 'file' is required"
	MsgMissingConvID     = "conversation_id is required"
	MsgFileTooLarge      = "Uploaded file exceeds the maximum allowed size"
	MsgInvalidLog        = "File is not a readable DataFlash log"
	MsgParseLimit        = "Log file is too large or took too long to parse"
	MsgInvalidBody       = "Invalid request body"
	MsgInternalError     = "Internal server error"
	MsgTooManyRequests   = "Too many requests"
	MsgServerBusy        = "Server is busy, please retry"
	MsgChatErrorResponse = "Error processing message: "
)
