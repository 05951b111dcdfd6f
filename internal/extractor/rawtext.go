package extractor

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf16"
)

// rawText is the last-resort text path: it walks the PDF byte stream
// directly, decoding content streams and applying any ToUnicode CMaps it
// finds. It exists for statements whose embedded fonts confuse the library
// into emitting garbage; the period detector only needs readable header
// text, not geometry.
func rawText(data []byte) string {
	streams := contentStreams(data)
	if len(streams) == 0 {
		return ""
	}

	cm := collectCMaps(streams)

	var parts []string
	for _, s := range streams {
		if t := streamText(s, cm); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// contentStreams returns every stream...endstream body, inflated when the
// body is zlib-compressed.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte
	begin := []byte("stream")
	end := []byte("endstream")

	for off := 0; off < len(data); {
		i := bytes.Index(data[off:], begin)
		if i < 0 {
			break
		}
		start := off + i + len(begin)
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		j := bytes.Index(data[start:], end)
		if j < 0 {
			break
		}
		if body := data[start : start+j]; len(body) > 0 {
			streams = append(streams, inflate(body))
		}
		off = start + j + len(end)
	}
	return streams
}

func inflate(data []byte) []byte {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}

// charmap maps uppercase hex glyph codes to Unicode strings, merged from all
// ToUnicode CMaps in the document.
type charmap map[string]string

var (
	bfCharBlockRe  = regexp.MustCompile(`(?s)beginbfchar\s*(.*?)\s*endbfchar`)
	bfRangeBlockRe = regexp.MustCompile(`(?s)beginbfrange\s*(.*?)\s*endbfrange`)
	hexTokenRe     = regexp.MustCompile(`<([0-9A-Fa-f]+)>`)
)

func collectCMaps(streams [][]byte) charmap {
	cm := charmap{}
	for _, s := range streams {
		content := string(s)
		if !strings.Contains(content, "beginbfchar") && !strings.Contains(content, "beginbfrange") {
			continue
		}
		// bfchar: <src> <dst> pairs.
		for _, block := range bfCharBlockRe.FindAllStringSubmatch(content, -1) {
			tokens := hexTokenRe.FindAllStringSubmatch(block[1], -1)
			for i := 0; i+1 < len(tokens); i += 2 {
				if uni := hexToUnicode(tokens[i+1][1]); uni != "" {
					cm[strings.ToUpper(tokens[i][1])] = uni
				}
			}
		}
		// bfrange: <start> <end> <dstStart> triples. The array form is rare
		// in statement PDFs and is skipped.
		for _, block := range bfRangeBlockRe.FindAllStringSubmatch(content, -1) {
			for _, line := range strings.Split(block[1], "\n") {
				if strings.Contains(line, "[") {
					continue
				}
				tokens := hexTokenRe.FindAllStringSubmatch(line, -1)
				if len(tokens) < 3 {
					continue
				}
				lo, okLo := hexToInt(tokens[0][1])
				hi, okHi := hexToInt(tokens[1][1])
				dst, okDst := hexToInt(tokens[2][1])
				if !okLo || !okHi || !okDst || hi-lo > 0xFFFF {
					continue
				}
				width := len(tokens[0][1])
				for code := lo; code <= hi; code++ {
					uni := hexToUnicode(intToHex(dst+code-lo, len(tokens[2][1])))
					if uni != "" {
						cm[intToHex(code, width)] = uni
					}
				}
			}
		}
	}
	return cm
}

// decode translates raw string bytes through the cmap. Code width is taken
// from the map's keys (one or two bytes in practice).
func (cm charmap) decode(raw []byte) string {
	if len(cm) == 0 {
		return ""
	}
	width := 1
	for k := range cm {
		width = len(k) / 2
		break
	}
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	for i := 0; i+width <= len(raw); i += width {
		key := strings.ToUpper(hex.EncodeToString(raw[i : i+width]))
		if uni, ok := cm[key]; ok {
			b.WriteString(uni)
		} else if width == 1 && raw[i] >= 32 && raw[i] < 127 {
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

var (
	hexShowRe = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*Tj`)
	litShowRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|')`)
	arrShowRe = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	litPartRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)
	newLineRe = regexp.MustCompile(`[\d.\-]+\s+[\d.\-]+\s+T[dD]`)
)

// streamText extracts the text shown by a content stream, one output line
// per Td/TD reposition.
func streamText(data []byte, cm charmap) string {
	content := string(data)
	if !strings.Contains(content, "Tj") && !strings.Contains(content, "TJ") {
		return ""
	}

	var lines []string
	var cur strings.Builder
	endLine := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			lines = append(lines, s)
		}
		cur.Reset()
	}

	for _, op := range strings.Split(content, "\n") {
		op = strings.TrimSpace(op)
		if op == "T*" || newLineRe.MatchString(op) {
			endLine()
		}
		for _, m := range hexShowRe.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeHexShow(m[1], cm))
		}
		for _, m := range litShowRe.FindAllStringSubmatch(op, -1) {
			cur.WriteString(decodeLiteral(m[1], cm))
		}
		for _, m := range arrShowRe.FindAllStringSubmatch(op, -1) {
			for _, h := range hexTokenRe.FindAllStringSubmatch(m[1], -1) {
				cur.WriteString(decodeHexShow(h[1], cm))
			}
			for _, l := range litPartRe.FindAllStringSubmatch(m[1], -1) {
				cur.WriteString(decodeLiteral(l[1], cm))
			}
		}
	}
	endLine()
	return strings.Join(lines, "\n")
}

func decodeHexShow(hexStr string, cm charmap) string {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return ""
	}
	if s := cm.decode(raw); s != "" {
		return s
	}
	// No mapping: try UTF-16BE, then ASCII.
	if len(raw) >= 2 && len(raw)%2 == 0 {
		var b strings.Builder
		for i := 0; i+1 < len(raw); i += 2 {
			r := rune(raw[i])<<8 | rune(raw[i+1])
			if unicode.IsPrint(r) || r == ' ' {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return printable(string(raw))
}

func decodeLiteral(s string, cm charmap) string {
	decoded := unescapePDF(s)
	if out := cm.decode([]byte(decoded)); out != "" && mostlyPrintable(out) {
		return out
	}
	return printable(decoded)
}

// unescapePDF resolves backslash escapes in literal strings, including
// octal codes.
func unescapePDF(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch c := s[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '(', ')', '\\':
			b.WriteByte(c)
		default:
			if c >= '0' && c <= '7' {
				val := int(c - '0')
				for j := 0; j < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; j++ {
					i++
					val = val*8 + int(s[i]-'0')
				}
				if val < 256 {
					b.WriteByte(byte(val))
				}
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func hexToInt(h string) (int, bool) {
	val := 0
	for _, c := range strings.ToUpper(h) {
		val <<= 4
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'A' && c <= 'F':
			val += int(c-'A') + 10
		default:
			return 0, false
		}
	}
	return val, true
}

func intToHex(val, width int) string {
	h := strings.ToUpper(hex.EncodeToString([]byte{byte(val >> 8), byte(val)}))
	if len(h) > width {
		h = h[len(h)-width:]
	}
	for len(h) < width {
		h = "0" + h
	}
	return h
}

// hexToUnicode interprets a hex string as UTF-16BE, including surrogate
// pairs.
func hexToUnicode(h string) string {
	if len(h)%2 != 0 {
		h = "0" + h
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return ""
	}
	var units []uint16
	for i := 0; i+1 < len(raw); i += 2 {
		units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
	}
	return string(utf16.Decode(units))
}

func printable(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s))
}

func mostlyPrintable(s string) bool {
	if s == "" {
		return false
	}
	n, ok := 0, 0
	for _, r := range s {
		n++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			ok++
		}
	}
	return float64(ok)/float64(n) > 0.5
}
