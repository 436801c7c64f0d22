package authsdk

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// ErrorBody is the parsed body of a non-2xx response. It is one of
// TokenExpiredBody, DetailBody, FieldErrorsBody or UnknownBody.
type ErrorBody interface {
	Message() string
	errorBody()
}

// TokenExpiredBody is the backend's expired access credential rejection.
type TokenExpiredBody struct {
	Messages []string
}

// DetailBody carries a single non-field error.
type DetailBody struct {
	Detail string
}

// FieldError is one entry of a field-keyed error body.
type FieldError struct {
	Field    string
	Messages []string
}

// FieldErrorsBody keeps the fields in body order.
type FieldErrorsBody struct {
	Fields []FieldError
}

// UnknownBody is anything else, including bodies that are not JSON.
type UnknownBody struct {
	Text string
}

func (TokenExpiredBody) Message() string { return "Token is expired" }
func (b DetailBody) Message() string     { return b.Detail }
func (b UnknownBody) Message() string    { return b.Text }

func (b FieldErrorsBody) Message() string {
	parts := make([]string, 0, len(b.Fields))
	for _, f := range b.Fields {
		parts = append(parts, f.Field+": "+strings.Join(f.Messages, " "))
	}
	return strings.Join(parts, " | ")
}

func (TokenExpiredBody) errorBody() {}
func (DetailBody) errorBody()       {}
func (FieldErrorsBody) errorBody()  {}
func (UnknownBody) errorBody()      {}

// ParseErrorBody classifies an error response once, in this order: token
// expiry (401 only), detail, field errors, unknown.
func ParseErrorBody(status int, body []byte) ErrorBody {
	if !json.Valid(body) {
		text := http.StatusText(status)
		if text == "" {
			text = defaultAPIErrorMessage
		}
		return UnknownBody{Text: text}
	}

	if status == http.StatusUnauthorized {
		if b, ok := parseTokenExpired(body); ok {
			return b
		}
	}

	var shape struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &shape); err == nil && truthy(shape.Detail) {
		if d := jsString(shape.Detail); d != "" {
			return DetailBody{Detail: d}
		}
		return UnknownBody{Text: defaultAPIErrorMessage}
	}

	fields, ok := orderedFields(body)
	if !ok || len(fields) == 0 {
		return UnknownBody{Text: defaultAPIErrorMessage}
	}
	return FieldErrorsBody{Fields: fields}
}

func parseTokenExpired(body []byte) (TokenExpiredBody, bool) {
	var shape struct {
		Code     string          `json:"code"`
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &shape); err != nil || shape.Code != "token_not_valid" {
		return TokenExpiredBody{}, false
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(shape.Messages, &entries); err != nil {
		return TokenExpiredBody{}, false
	}

	var (
		texts   []string
		expired bool
	)
	for _, raw := range entries {
		var m struct {
			Message any `json:"message"`
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		text, ok := m.Message.(string)
		if !ok {
			continue
		}
		texts = append(texts, text)
		if strings.Contains(strings.ToLower(text), "token is expired") {
			expired = true
		}
	}
	return TokenExpiredBody{Messages: texts}, expired
}

// orderedFields walks a JSON object keeping key order. An array is walked
// the same way with the indexes as field names. ok is false for anything
// else.
func orderedFields(body []byte) (fields []FieldError, ok bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, false
	}
	array := tok == json.Delim('[')
	if !array && tok != json.Delim('{') {
		return nil, false
	}

	for i := 0; dec.More(); i++ {
		key := strconv.Itoa(i)
		if !array {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, false
			}
			key, _ = keyTok.(string)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		fields = append(fields, FieldError{Field: key, Messages: messagesOf(value)})
	}
	return fields, true
}

// messagesOf lists a field's messages. A list joins its items the way the
// web client did, so null items become empty strings.
func messagesOf(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{jsString(v)}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, listItem(item))
	}
	return out
}

// truthy follows the web client's test for a usable detail.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

// jsString renders a decoded JSON value as the web client displayed it:
// lists joined with commas, objects as "[object Object]".
func jsString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = listItem(item)
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

func listItem(v any) string {
	if v == nil {
		return ""
	}
	return jsString(v)
}
