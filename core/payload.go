package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

// Payload is a successful response before endpoint-specific typing. Data
// holds the parsed JSON value when the response declared JSON, otherwise the
// body as text.
type Payload struct {
	StatusCode int
	URL        string
	Header     http.Header
	Raw        []byte
	Data       any
}

// DecodePayload narrows a payload into T using the raw body.
func DecodePayload[T any](payload Payload) (T, error) {
	var out T
	raw := bytes.TrimSpace(payload.Raw)
	if len(raw) == 0 {
		return out, decodeError(fmt.Errorf("empty response body"), payload.StatusCode, payload.URL, payload.Data)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, decodeError(err, payload.StatusCode, payload.URL, payload.Data)
	}
	return out, nil
}

func isJSONContentType(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(value, ";")[0]))
	}
	return mediaType == mediaTypeJSON || strings.HasSuffix(mediaType, "+json")
}

// parseBody returns parsed JSON for JSON responses with a non-empty body and
// the text otherwise.
func parseBody(header http.Header, raw []byte) (any, error) {
	if !isJSONContentType(header.Get(headerContentType)) || len(bytes.TrimSpace(raw)) == 0 {
		return string(raw), nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// remoteErrorMessage picks message, error, detail, then status text.
func remoteErrorMessage(body any, statusText string) string {
	if fields, ok := body.(map[string]any); ok {
		for _, key := range []string{"message", "error", "detail"} {
			if text := messageText(fields[key]); text != "" {
				return text
			}
		}
	}
	if strings.TrimSpace(statusText) != "" {
		return statusText
	}
	return genericRemoteErrorMessage
}

// messageText renders a message field. Lists are joined with "; " and other
// non-null values are printed with fmt.
func messageText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		if strings.TrimSpace(typed) == "" {
			return ""
		}
		return typed
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			if text := messageText(item); text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		if len(typed) == 0 {
			return ""
		}
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	default:
		return fmt.Sprint(typed)
	}
}

// statusText strips the numeric prefix net/http puts in Response.Status.
func statusText(statusCode int, status string) string {
	status = strings.TrimSpace(status)
	prefix := fmt.Sprintf("%d", statusCode)
	if strings.HasPrefix(status, prefix) {
		status = strings.TrimSpace(strings.TrimPrefix(status, prefix))
	}
	if status != "" {
		return status
	}
	return http.StatusText(statusCode)
}
