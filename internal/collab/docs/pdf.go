package docs

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFReader reads the embedded text layer with github.com/ledongthuc/pdf
type PDFReader struct{}

// PageTexts returns one entry per page; pages that fail to decode yield ""
func (PDFReader) PageTexts(data []byte) (texts []string, err error) {
	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			texts, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	n := reader.NumPage()
	texts = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}
