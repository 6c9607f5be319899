package util

import "regexp"

var (
	reEmail  = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	reToken  = regexp.MustCompile(`(?i)\b((?:api[_-]?key|secret|token|password|passwd|key))([=:]\s*)([A-Za-z0-9\-_./+]{8,})`)
	reBearer = regexp.MustCompile(`(?i)\b(bearer\s+)[A-Za-z0-9\-_.=]{8,}`)
)

// RedactPII masks e-mail addresses and credential-looking key/value pairs
// in captured output before it leaves the process.
func RedactPII(s string) string {
	s = reEmail.ReplaceAllString(s, "[redacted-email]")
	s = reToken.ReplaceAllString(s, "${1}${2}[redacted]")
	s = reBearer.ReplaceAllString(s, "${1}[redacted]")
	return s
}
