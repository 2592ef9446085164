package core

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	headerAccept        = "Accept"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	mediaTypeJSON       = "application/json"
)

// BuildURL joins base, path and the encoded query.
func BuildURL(baseURL string, path string, query map[string]any) string {
	return baseURL + path + EncodeQuery(query)
}

// EncodeQuery renders query as "?k=v&..." with keys sorted. Nil values are
// skipped; an empty result yields "".
func EncodeQuery(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for key := range query {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		value, ok := stringifyQueryValue(query[key])
		if !ok {
			continue
		}
		pairs = append(pairs, escapeQueryComponent(key)+"="+escapeQueryComponent(value))
	}
	if len(pairs) == 0 {
		return ""
	}
	return "?" + strings.Join(pairs, "&")
}

func stringifyQueryValue(value any) (string, bool) {
	switch typed := value.(type) {
	case nil:
		return "", false
	case string:
		return typed, true
	case *string:
		if typed == nil {
			return "", false
		}
		return *typed, true
	case int:
		return strconv.Itoa(typed), true
	case *int:
		if typed == nil {
			return "", false
		}
		return strconv.Itoa(*typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	case *bool:
		if typed == nil {
			return "", false
		}
		return strconv.FormatBool(*typed), true
	case fmt.Stringer:
		return typed.String(), true
	default:
		return fmt.Sprint(typed), true
	}
}

func escapeQueryComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

// BuildHeaders applies the JSON defaults, conditional auth, then overrides.
// Override keys are canonicalized so each header appears once; an empty
// override value removes the header.
func BuildHeaders(apiKey string, includeAuth *bool, overrides map[string]string) map[string]string {
	headers := map[string]string{
		headerAccept:      mediaTypeJSON,
		headerContentType: mediaTypeJSON,
	}
	apiKey = strings.TrimSpace(apiKey)
	include := apiKey != ""
	if includeAuth != nil {
		include = include && *includeAuth
	}
	if include {
		headers[headerAuthorization] = apiKey
	}
	for key, value := range overrides {
		canonical := http.CanonicalHeaderKey(strings.TrimSpace(key))
		if canonical == "" {
			continue
		}
		if value == "" {
			delete(headers, canonical)
			continue
		}
		headers[canonical] = value
	}
	return headers
}
