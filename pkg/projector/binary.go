// File: pkg/projector/binary.go
package projector

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// errBinary marks files skipped because their content looks binary.
var errBinary = errors.New("binary content")

// sniffSize is how many leading bytes are inspected to classify a file.
const sniffSize = 512

// isBinaryFile checks if a file is likely to be binary by reading its first few bytes
// and checking for null bytes or a high ratio of non-printable characters
func isBinaryFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, sniffSize)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, err
	}
	return looksBinary(buffer[:n]), nil
}

// looksBinary applies the NUL byte and 30% non-printable heuristics to a sample.
func looksBinary(sample []byte) bool {
	if len(sample) == 0 {
		return false // Empty files are considered text
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonPrintable := 0
	for _, b := range sample {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(sample)) > 0.3
}

// isPrintable checks if a byte is printable ASCII, common whitespace, or part
// of a multi-byte UTF-8 sequence.
func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b >= 0x80
}
