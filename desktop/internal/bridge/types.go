package bridge

import (
	"encoding/json"
	"fmt"
)

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
}

// voiceRequest is the body of process_voice_input. audio_data is a JSON
// array of byte values, the way the webview serializes a Uint8Array.
type voiceRequest struct {
	AudioData audioBytes `json:"audio_data"`
}

// chatRequest is the body of send_message_to_agent. A missing message is a
// bad request; an empty one is forwarded as is.
type chatRequest struct {
	Message        *string `json:"message"`
	ConversationID *string `json:"conversation_id"`
}

type audioBytes []byte

// UnmarshalJSON accepts an array of integers in [0, 255].
func (b *audioBytes) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("audio_data: want an array of bytes: %w", err)
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("audio_data[%d]: %d is not a byte", i, n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}
