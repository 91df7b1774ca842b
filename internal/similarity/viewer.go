package similarity

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// BaseURLResolver turns a relative reference into an absolute URL for the current request.
type BaseURLResolver interface {
	AbsoluteURL(ref string) string
}

type BaseURLResolverFunc func(ref string) string

func (f BaseURLResolverFunc) AbsoluteURL(ref string) string {
	return f(ref)
}

// StaticBaseURL resolves references against a fixed base, e.g. "https://judge.example.com/".
type StaticBaseURL struct {
	Base *url.URL
}

func NewStaticBaseURL(base string) (*StaticBaseURL, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	return &StaticBaseURL{Base: u}, nil
}

func (s *StaticBaseURL) AbsoluteURL(ref string) string {
	if u, err := url.Parse(ref); err == nil {
		return s.Base.ResolveReference(u).String()
	}
	if strings.HasPrefix(ref, "/") && !strings.HasPrefix(ref, "//") {
		return s.Base.Scheme + "://" + s.Base.Host + ref
	}
	return ref
}

// RebuildViewerURL turns a stored report link into an absolute viewer link.
// The stored link is either "<viewer>?file=<report file>" or a bare report path.
// Only %XX sequences of the file parameter are decoded, so a literal '+' is kept.
func RebuildViewerURL(stored, viewerBase string, resolver BaseURLResolver) string {
	if stored == "" || resolver == nil {
		return stored
	}

	fileURL := fileParam(stored)
	if fileURL == "" {
		fileURL = stored
	}
	if !hasScheme(fileURL) {
		fileURL = resolver.AbsoluteURL(fileURL)
	}

	if !strings.HasSuffix(viewerBase, "/") {
		viewerBase += "/"
	}
	if !hasScheme(viewerBase) {
		viewerBase = resolver.AbsoluteURL(viewerBase)
	}

	return viewerBase + "?file=" + quote(fileURL, ":/%?&=#")
}

func fileParam(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	i := strings.IndexByte(raw, '?')
	if i < 0 {
		return ""
	}
	for _, part := range strings.Split(raw[i+1:], "&") {
		key, value, ok := strings.Cut(part, "=")
		if ok && key == "file" {
			return unquote(value)
		}
	}
	return ""
}

func hasScheme(raw string) bool {
	i := strings.IndexByte(raw, ':')
	if i <= 0 || !isAlpha(raw[0]) {
		return false
	}
	for j := 1; j < i; j++ {
		c := raw[j]
		if !isAlpha(c) && !isDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// unquote decodes valid %XX sequences and leaves everything else untouched.
// Bytes that do not form valid UTF-8 become U+FFFD, one per byte.
func unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	decoded := b.String()
	if utf8.ValidString(decoded) {
		return decoded
	}
	b.Reset()
	for _, r := range decoded {
		b.WriteRune(r)
	}
	return b.String()
}

// quote percent-encodes every byte except ASCII letters, digits, "_.-~" and safe.
func quote(s, safe string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlpha(c) || isDigit(c) || strings.IndexByte("_.-~", c) >= 0 || strings.IndexByte(safe, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHex(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case isDigit(c):
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
