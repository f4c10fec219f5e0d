package formatter

import (
	"bytes"

	"github.com/futig/faq-assistant/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(transcript *entity.Transcript) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(baseTitle)

	subtitlePar := doc.AddParagraph()
	subtitleRun := subtitlePar.AddRun()
	subtitleRun.Properties().SetItalic(true)
	subtitleRun.AddText(subtitle(transcript))

	for _, turn := range transcript.History {
		par := doc.AddParagraph()

		speakerRun := par.AddRun()
		speakerRun.Properties().SetBold(true)
		speakerRun.AddText(speaker(turn.Role) + ": ")

		par.AddRun().AddText(turn.Content)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
