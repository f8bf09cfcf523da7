package parser

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"regexp"
)

// ExtractText is a best-effort extractor for text-based PDFs: it
// inflates Flate streams and collects the literal strings fed to the
// Tj/TJ text operators. Image-only resumes yield little or nothing,
// which the parser turns into ErrUnreadablePDF. Encrypted files and
// exotic encodings are out of scope here.
func ExtractText(pdf []byte) (string, error) {
	if len(pdf) < 5 || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		return "", fmt.Errorf("not a PDF file")
	}

	var out bytes.Buffer
	collectTextOps(pdf, &out)

	for _, stream := range flateStreams(pdf) {
		collectTextOps(stream, &out)
	}
	return out.String(), nil
}

var streamRe = regexp.MustCompile(`(?s)stream\r?\n(.*?)endstream`)

func flateStreams(pdf []byte) [][]byte {
	var out [][]byte
	for _, m := range streamRe.FindAllSubmatch(pdf, -1) {
		r, err := zlib.NewReader(bytes.NewReader(m[1]))
		if err != nil {
			continue
		}
		inflated, err := io.ReadAll(io.LimitReader(r, 8<<20))
		_ = r.Close()
		if err != nil && len(inflated) == 0 {
			continue
		}
		out = append(out, inflated)
	}
	return out
}

// textOpRe matches "(...) Tj" and "[...] TJ" show-text operators.
var textOpRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|'|")|\[((?:[^\[\]\\]|\\.)*)\]\s*TJ`)

var literalRe = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)`)

func collectTextOps(data []byte, out *bytes.Buffer) {
	for _, m := range textOpRe.FindAllSubmatch(data, -1) {
		if len(m[1]) > 0 {
			writeLiteral(m[1], out)
			out.WriteByte(' ')
			continue
		}
		for _, lit := range literalRe.FindAllSubmatch(m[2], -1) {
			writeLiteral(lit[1], out)
		}
		out.WriteByte(' ')
	}
}

func writeLiteral(lit []byte, out *bytes.Buffer) {
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c == '\\' && i+1 < len(lit) {
			i++
			switch lit[i] {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte(' ')
			case '(', ')', '\\':
				out.WriteByte(lit[i])
			}
			continue
		}
		out.WriteByte(c)
	}
}
