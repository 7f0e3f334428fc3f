package browser

import "encoding/json"

// JSString encodes s as a JavaScript string literal, safe to splice into
// evaluated page scripts.
func JSString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

// JSStringArray encodes ss as a JavaScript array literal.
func JSStringArray(ss []string) string {
	data, _ := json.Marshal(ss)
	return string(data)
}
