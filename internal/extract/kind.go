package extract

import (
	"mime"
	"path/filepath"
	"strings"
)

// Kind is the closed set of document formats the service can read.
type Kind int

const (
	Unsupported Kind = iota
	PlainText
	PDF
	WordDocument
	Markdown
	Spreadsheet
)

func (k Kind) String() string {
	switch k {
	case PlainText:
		return "text"
	case PDF:
		return "pdf"
	case WordDocument:
		return "docx"
	case Markdown:
		return "markdown"
	case Spreadsheet:
		return "spreadsheet"
	default:
		return "unsupported"
	}
}

var mimeKinds = map[string]Kind{
	"text/plain":      PlainText,
	"application/pdf": PDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": WordDocument,
	"text/markdown":   Markdown,
	"text/x-markdown": Markdown,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": Spreadsheet,
}

var extKinds = map[string]Kind{
	".txt":      PlainText,
	".text":     PlainText,
	".log":      PlainText,
	".pdf":      PDF,
	".docx":     WordDocument,
	".md":       Markdown,
	".markdown": Markdown,
	".xlsx":     Spreadsheet,
	".xlsm":     Spreadsheet,
}

// DetectKind maps the declared content type to a Kind. When the type is
// missing or generic the file extension decides.
func DetectKind(contentType, filename string) Kind {
	mediaType := ""
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = strings.ToLower(mt)
		}
	}
	if mediaType != "" && mediaType != "application/octet-stream" {
		return mimeKinds[mediaType]
	}
	return extKinds[strings.ToLower(filepath.Ext(filename))]
}
