package logging

import (
	"io"
	"regexp"
)

var (
	// bearerRegex matches Authorization header values and raw bearer tokens.
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
	// tokenFieldRegex matches token fields in logged JSON bodies.
	tokenFieldRegex = regexp.MustCompile(`"(access_token|refresh_token|token)"\s*:\s*"[^"]*"`)
	// passwordFieldRegex matches password fields in logged JSON bodies.
	passwordFieldRegex = regexp.MustCompile(`"(password|encrypted_password)"\s*:\s*"[^"]*"`)
)

// RedactingWriter is an io.Writer that redacts sensitive information before
// writing to an underlying writer.
type RedactingWriter struct {
	underlying   io.Writer                 // The underlying writer to write to.
	replacements map[*regexp.Regexp]string // Map of regex patterns to their replacements.
}

// NewRedactingWriter creates a new writer that redacts credential material.
// The account username, when given, is redacted alongside the static token
// and password patterns.
func NewRedactingWriter(w io.Writer, username string) io.Writer {
	replacements := make(map[*regexp.Regexp]string)

	// Add static redactions
	replacements[bearerRegex] = "bearer [TOKEN]"
	replacements[tokenFieldRegex] = `"$1":"[TOKEN]"`
	replacements[passwordFieldRegex] = `"$1":"[PASSWORD]"`

	// Add dynamic redactions
	if username != "" {
		replacements[regexp.MustCompile(regexp.QuoteMeta(username))] = "[USERNAME]"
	}

	return &RedactingWriter{
		underlying:   w,
		replacements: replacements,
	}
}

// Write redacts the input byte slice and writes it to the underlying writer.
func (rw *RedactingWriter) Write(p []byte) (n int, err error) {
	originalLen := len(p)
	message := string(p)
	for re, repl := range rw.replacements {
		message = re.ReplaceAllString(message, repl)
	}

	_, err = rw.underlying.Write([]byte(message))
	if err != nil {
		return 0, err
	}

	// We return the original length to satisfy the io.Writer contract,
	// even if the written length is different. The caller is interested
	// in whether the original buffer was processed.
	return originalLen, nil
}
