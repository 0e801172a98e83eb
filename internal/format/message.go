package format

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message contains plain text and the entities that style it.
type Message struct {
	Text     string
	Entities []tgbotapi.MessageEntity
}

// UTF16Len calculates the UTF-16 length of a string.
// Telegram uses UTF-16 code units for entity offsets and lengths.
func UTF16Len(s string) int {
	length := 0
	for _, b := range []byte(s) {
		if (b & 0xc0) != 0x80 {
			if b >= 0xf0 {
				length += 2 // Non-BMP characters (surrogate pairs)
			} else {
				length += 1
			}
		}
	}
	return length
}

// Builder assembles a Message segment by segment, tracking entity offsets
// as it goes.
type Builder struct {
	sb       strings.Builder
	offset   int
	entities []tgbotapi.MessageEntity
}

func (b *Builder) Text(s string) *Builder {
	b.sb.WriteString(s)
	b.offset += UTF16Len(s)
	return b
}

func (b *Builder) Line() *Builder {
	return b.Text("\n")
}

func (b *Builder) Bold(s string) *Builder {
	return b.styled("bold", s)
}

func (b *Builder) Italic(s string) *Builder {
	return b.styled("italic", s)
}

func (b *Builder) Code(s string) *Builder {
	return b.styled("code", s)
}

func (b *Builder) styled(kind, s string) *Builder {
	if s == "" {
		return b
	}
	n := UTF16Len(s)
	b.entities = append(b.entities, tgbotapi.MessageEntity{
		Type:   kind,
		Offset: b.offset,
		Length: n,
	})
	b.sb.WriteString(s)
	b.offset += n
	return b
}

func (b *Builder) Message() Message {
	return Message{
		Text:     strings.TrimRight(b.sb.String(), "\n"),
		Entities: b.entities,
	}
}
