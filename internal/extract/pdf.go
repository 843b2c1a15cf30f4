package extract

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// parsePDF concatenates the text of every page. The pdf package panics on
// some malformed inputs, so panics are turned into errors.
func parsePDF(_ context.Context, f *os.File, size int64) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(f, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}
