package chat

const titleMaxLen = 30

// deriveTitle names a session after its opening message: the first 30
// characters, with "..." appended only when the message was truncated.
func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return content
	}
	return string(runes[:titleMaxLen]) + "..."
}
