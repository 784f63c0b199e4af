package jsonscan

import "strings"

const fence = "```"

// ExtractObject locates the JSON object inside a free-text reply. It tries, in
// order: a fence labelled json, any fence whose trimmed content starts with
// '{', and the span from the first '{' to the last '}'.
func ExtractObject(reply string) (string, bool) {
	if body, ok := fencedBlock(reply, strings.Index(reply, fence+"json")); ok && body != "" {
		return body, true
	}
	if body, ok := fencedBlock(reply, strings.Index(reply, fence)); ok && strings.HasPrefix(body, "{") {
		return body, true
	}

	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

// fencedBlock returns the trimmed content of the fence opened at at. Content
// starts after the opening line; the fence must be closed.
func fencedBlock(s string, at int) (string, bool) {
	if at < 0 {
		return "", false
	}
	nl := strings.IndexByte(s[at:], '\n')
	if nl < 0 {
		return "", false
	}
	start := at + nl + 1
	end := strings.Index(s[start:], fence)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[start : start+end]), true
}
