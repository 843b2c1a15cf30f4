package extract

import (
	"context"
	"fmt"
	nurl "net/url"
	"os"

	"github.com/go-shiori/go-readability"
)

// uploadURL stands in for the page location, which an uploaded file lacks.
var uploadURL = &nurl.URL{Scheme: "file", Path: "/upload.html"}

// parseHTML keeps the readable article body of an HTML document.
func parseHTML(_ context.Context, f *os.File, _ int64) (string, error) {
	article, err := readability.FromReader(f, uploadURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return article.TextContent, nil
}
