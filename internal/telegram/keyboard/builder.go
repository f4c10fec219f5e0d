package keyboard

import (
	"strings"

	"github.com/futig/faq-assistant/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// ChatKeyboard is attached to every answer
func (b *Builder) ChatKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Clear chat", EncodeCallback(ActionChat, "reset")),
			tgbotapi.NewInlineKeyboardButtonData("📄 Export", EncodeCallback(ActionChat, "export")),
		),
	)
}

// ExportKeyboard lets the user pick a transcript format
func (b *Builder) ExportKeyboard() tgbotapi.InlineKeyboardMarkup {
	formats := []entity.ResultFormat{entity.FormatMarkdown, entity.FormatPDF, entity.FormatDOCX}

	row := make([]tgbotapi.InlineKeyboardButton, 0, len(formats))
	for _, format := range formats {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.ToUpper(string(format)),
			EncodeCallback(ActionExport, string(format)),
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(row)
}
