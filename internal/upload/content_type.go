package upload

import (
	"fmt"
	"io"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

const genericContentType = "application/octet-stream"

// resolveContentType keeps the content type declared by the client and only
// sniffs the payload when none (or the generic binary type) was sent.
// The reader is rewound before returning.
func resolveContentType(body io.ReadSeeker, declared string) (string, error) {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != genericContentType {
			return declared, nil
		}
	}

	detected, err := mimetype.DetectReader(body)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	return detected.String(), nil
}
