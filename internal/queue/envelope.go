package queue

import "encoding/json"

type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// UnwrapEnvelope returns the inner payload when the body is an SNS
// notification envelope, otherwise the body unchanged. Queues subscribed to
// a topic without raw message delivery wrap the event this way.
func UnwrapEnvelope(body []byte) []byte {
	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	if env.Type == "Notification" && env.Message != "" {
		return []byte(env.Message)
	}
	return body
}
