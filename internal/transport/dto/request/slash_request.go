package request

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lsdops/slashreport/internal/domain"
)

// ParseSlashCommand снимает снимок slash-команды с живого запроса.
// После возврата снимок самодостаточен, в транспорт он больше не смотрит.
func ParseSlashCommand(r *http.Request, rawBody []byte) domain.InboundCommand {
	// Тело form-encoded, но парсим копию: сырые байты нужны для подписи
	form, _ := url.ParseQuery(string(rawBody))

	// Нечисловой заголовок даёт нулевую метку времени и отказ по окну повтора
	timestamp, _ := strconv.ParseInt(r.Header.Get("X-Slack-Request-Timestamp"), 10, 64)

	query := r.URL.Query()
	accessKey := query.Get("token")
	if accessKey == "" {
		accessKey = r.Header.Get("Private-Token")
	}

	namesParam := query.Get("groups_names")
	if namesParam == "" {
		namesParam = query.Get("groups")
	}
	var names []string
	if namesParam != "" {
		for _, name := range strings.Split(namesParam, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}

	return domain.InboundCommand{
		RawBody:     rawBody,
		Timestamp:   timestamp,
		Signature:   r.Header.Get("X-Slack-Signature"),
		ChannelID:   form.Get("channel_id"),
		UserID:      form.Get("user_id"),
		Command:     form.Get("command"),
		Text:        form.Get("text"),
		ResponseURL: form.Get("response_url"),
		GroupNames:  names,
		AccessKey:   accessKey,
	}
}
