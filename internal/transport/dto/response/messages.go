package response

import (
	"fmt"
	"strings"

	"github.com/lsdops/slashreport/internal/domain"
)

const (
	TypeEphemeral = "ephemeral"
	TypeInChannel = "in_channel"
)

// Message формат сообщений Slack для синхронных ответов и callback-доставки
type Message struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

func InChannel(text string) Message {
	return Message{
		ResponseType: TypeInChannel,
		Text:         text,
	}
}

// Collecting синхронный ack: отчёт придёт отдельным сообщением
func Collecting() Message {
	return Message{
		ResponseType: TypeEphemeral,
		Text:         "Collecting the information, it will arrive in a moment! :smile:",
	}
}

// Denied общий отказ. Какая именно проверка не прошла, наружу не уходит.
func Denied() Message {
	return Message{
		ResponseType: TypeEphemeral,
		Text:         "Sorry, this command is not authorized here. :white_frowning_face:",
	}
}

// Fallback единственное сообщение о любой ошибке отложенной работы
func Fallback() Message {
	return Message{
		ResponseType: TypeEphemeral,
		Text:         "Could not retrieve the information. Sorry :slightly_frowning_face:",
	}
}

// Help перечисляет оба набора ключевых слов для вызвавшей команды
func Help(command string) Message {
	var b strings.Builder
	b.WriteString("*Merge Requests*:")
	for _, keyword := range domain.MergeRequestKeywords {
		fmt.Fprintf(&b, "\n    %s %s", command, keyword)
	}
	b.WriteString("\n*Issues*:")
	for _, keyword := range domain.IssueKeywords {
		fmt.Fprintf(&b, "\n    %s %s", command, keyword)
	}
	return Message{
		ResponseType: TypeEphemeral,
		Text:         b.String(),
	}
}
