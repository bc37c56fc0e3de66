package conversation

import (
	"github.com/harun/chatclone/pkg/assembler"
)

// ErrorMessage turns a failed exchange into a line suitable for display
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch assembler.KindOf(err) {
	case assembler.KindAuthentication:
		return "Authentication failed, check the API key: " + err.Error()
	case assembler.KindQuota:
		return "Quota or rate limit reached, try again later: " + err.Error()
	case assembler.KindNetwork:
		return "Could not reach the model provider: " + err.Error()
	case assembler.KindMalformedResponse:
		return "The model returned an unusable response: " + err.Error()
	case assembler.KindInvalidRequest:
		return "The model provider rejected the request: " + err.Error()
	case assembler.KindCanceled:
		return "Request cancelled."
	default:
		return "Error: " + err.Error()
	}
}
