package secrets

import "encoding/json"

// decodePayload reads a JSON object of strings, or stores raw under "value".
func decodePayload(raw []byte) map[string]string {
	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil && asMap != nil {
		return asMap
	}
	return map[string]string{"value": string(raw)}
}
