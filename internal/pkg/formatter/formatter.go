package formatter

import (
	"fmt"

	"github.com/futig/faq-assistant/internal/entity"
)

const baseTitle = "Conversation transcript"

type Formatter interface {
	Format(transcript *entity.Transcript) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidFormat, format)
	}
}

func speaker(role entity.Role) string {
	if role == entity.RoleAssistant {
		return "Assistant"
	}
	return "User"
}

func subtitle(transcript *entity.Transcript) string {
	return fmt.Sprintf("Session %s, exported %s", transcript.SessionID, transcript.ExportedAt.UTC().Format("2006-01-02 15:04 MST"))
}
