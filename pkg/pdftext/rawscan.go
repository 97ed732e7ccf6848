package pdftext

import (
	"encoding/hex"
	"regexp"
	"sort"
	"strings"
	"unicode/utf16"
)

var (
	literalRe    = regexp.MustCompile(`\((?:[^()\\]|\\.)*\)`)
	hexStringRe  = regexp.MustCompile(`<([0-9A-Fa-f\s]+)>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// RawScanner scans the raw byte stream for literal "(...)" and hex "<...>"
// strings. It recovers text from uncompressed content streams the page
// walker cannot open.
type RawScanner struct {
	// MinRun is the shortest printable fragment kept; 0 means 2.
	MinRun int
}

func (RawScanner) Name() string { return "raw_scan" }

func (s RawScanner) Extract(data []byte) (string, error) {
	minRun := s.MinRun
	if minRun <= 0 {
		minRun = 2
	}

	type match struct {
		at   int
		text string
	}
	var found []match

	for _, loc := range literalRe.FindAllIndex(data, -1) {
		found = append(found, match{loc[0], decodeLiteral(data[loc[0]+1 : loc[1]-1])})
	}
	for _, loc := range hexStringRe.FindAllSubmatchIndex(data, -1) {
		found = append(found, match{loc[0], decodeHex(data[loc[2]:loc[3]])})
	}

	// keep document order across both patterns
	sort.Slice(found, func(i, j int) bool { return found[i].at < found[j].at })

	parts := make([]string, 0, len(found))
	for _, m := range found {
		t := strings.TrimSpace(whitespaceRe.ReplaceAllString(m.text, " "))
		if len(t) < minRun || !printableASCII(t) {
			continue
		}
		parts = append(parts, t)
	}
	return normalizeSpace(strings.Join(parts, " ")), nil
}

func decodeLiteral(b []byte) string {
	var sb strings.Builder
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '\\' || i+1 >= len(b) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := b[i]; e {
		case 'n', 'r', 't', 'f', 'b':
			sb.WriteByte(' ')
		case '(', ')', '\\':
			sb.WriteByte(e)
		case '\r', '\n':
			// line continuation
		default:
			if e >= '0' && e <= '7' {
				v := int(e - '0')
				for k := 0; k < 2 && i+1 < len(b) && b[i+1] >= '0' && b[i+1] <= '7'; k++ {
					i++
					v = v*8 + int(b[i]-'0')
				}
				sb.WriteByte(byte(v))
				continue
			}
			sb.WriteByte(e)
		}
	}
	return sb.String()
}

func decodeHex(b []byte) string {
	clean := whitespaceRe.ReplaceAll(b, nil)
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	raw := make([]byte, hex.DecodedLen(len(clean)))
	if _, err := hex.Decode(raw, clean); err != nil {
		return ""
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return string(utf16.Decode(units))
	}
	return string(raw)
}

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
