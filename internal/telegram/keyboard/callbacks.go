package keyboard

import (
	"fmt"
	"strings"
)

const separator = ":"

// Callback namespaces. The value after the separator is the concrete choice.
const (
	ActionChat   = "action" // reset or export
	ActionExport = "export" // transcript format
)

type CallbackData struct {
	Action string
	Value  string
}

// ParseCallback splits button data into namespace and value. Both must be present.
func ParseCallback(data string) (*CallbackData, error) {
	action, value, ok := strings.Cut(data, separator)
	if !ok || action == "" || value == "" {
		return nil, fmt.Errorf("invalid callback data %q", data)
	}
	return &CallbackData{Action: action, Value: value}, nil
}

// EncodeCallback joins namespace and value. Telegram limits the result to 64 bytes.
func EncodeCallback(action, value string) string {
	return action + separator + value
}
