package projector

import "bytes"

var (
	crlf = []byte("\r\n")
	cr   = []byte("\r")
	lf   = []byte("\n")
)

// decodeText turns raw file bytes into document text. Invalid UTF-8 sequences
// are dropped rather than reported, and CRLF or lone CR line endings become LF.
func decodeText(raw []byte) string {
	text := bytes.ToValidUTF8(raw, nil)
	text = bytes.ReplaceAll(text, crlf, lf)
	text = bytes.ReplaceAll(text, cr, lf)
	return string(text)
}
