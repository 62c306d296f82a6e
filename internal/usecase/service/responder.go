package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lsdops/slashreport/internal/domain"
	"github.com/lsdops/slashreport/internal/transport/dto/response"
	"go.uber.org/zap"
)

// GitLabAPI всё, что нужно отложенной работе от GitLab
type GitLabAPI interface {
	GroupSearcher
	ProjectLister
}

// Responder запускает разрешение имён и агрегацию вне пути обработки запроса
// и доставляет результат на одноразовый callback URL. Одна горутина на
// принятую команду, без пула и без ограничения — поток команд низкий.
type Responder struct {
	resolver        *GroupResolver
	aggregator      *Aggregator
	api             func(token string) GitLabAPI
	gitlabToken     string
	secretAccessKey string
	httpc           *http.Client
	log             *zap.Logger
}

func NewResponder(
	resolver *GroupResolver,
	aggregator *Aggregator,
	api func(token string) GitLabAPI,
	gitlabToken string,
	secretAccessKey string,
	log *zap.Logger,
) *Responder {
	return &Responder{
		resolver:        resolver,
		aggregator:      aggregator,
		api:             api,
		gitlabToken:     gitlabToken,
		secretAccessKey: secretAccessKey,
		// Без таймаута: доставка callback не отменяется
		httpc: &http.Client{},
		log:   log,
	}
}

// Dispatch запускает отложенную работу и сразу возвращается. Снимок команды
// передаётся горутине по значению, синхронный ack вызывающему от неё не зависит.
func (r *Responder) Dispatch(cmd domain.InboundCommand, kind domain.ItemKind) {
	go r.run(cmd, kind)
}

func (r *Responder) run(cmd domain.InboundCommand, kind domain.ItemKind) {
	log := r.log.With(
		zap.String("dispatch_id", uuid.NewString()),
		zap.String("kind", string(kind)),
		zap.String("channel_id", cmd.ChannelID),
	)
	log.Info("deferred report started",
		zap.String("user_id", cmd.UserID),
		zap.Strings("groups", cmd.GroupNames),
	)

	message := response.InChannel("")
	text, err := r.collect(context.Background(), cmd, kind)
	if err != nil {
		// Любая ошибка внутри отложенной работы схлопывается в один fallback,
		// частичные результаты не отправляются
		log.Error("deferred report failed", zap.Error(WrapError(ErrUpstreamFailure, err)))
		message = response.Fallback()
	} else {
		message.Text = text
		log.Info("deferred report completed")
	}

	if err := r.post(cmd.ResponseURL, message); err != nil {
		log.Error("callback delivery failed", zap.Error(err))
	}
}

func (r *Responder) collect(ctx context.Context, cmd domain.InboundCommand, kind domain.ItemKind) (string, error) {
	api := r.api(r.releaseToken(cmd.AccessKey))

	groupIDs, err := r.resolver.Resolve(ctx, api, cmd.GroupNames)
	if err != nil {
		return "", err
	}

	report, err := r.aggregator.Aggregate(ctx, api, groupIDs, kind)
	if err != nil {
		return "", err
	}

	return formatReport(cmd, kind, report), nil
}

// releaseToken отдаёт настоящий токен GitLab только если запрос предъявил
// общий ключ доступа. Вызывающий доказывает право, не видя сам токен.
func (r *Responder) releaseToken(accessKey string) string {
	if accessKey == r.secretAccessKey {
		return r.gitlabToken
	}
	return ""
}

func (r *Responder) post(callbackURL string, message response.Message) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal callback message: %w", err)
	}
	res, err := r.httpc.Post(callbackURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post callback: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("post callback: status %d", res.StatusCode)
	}
	return nil
}

func formatReport(cmd domain.InboundCommand, kind domain.ItemKind, report domain.Report) string {
	lines := []string{
		fmt.Sprintf("<@%s>: %s %s", cmd.UserID, cmd.Command, cmd.Text),
		fmt.Sprintf("Open *%s*\n", kind.Title()),
	}

	groups := make([]string, 0, len(report))
	for name := range report {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	for _, name := range groups {
		lines = append(lines, fmt.Sprintf("*%s*:", name))
		items := report[name]
		if len(items) == 0 {
			lines = append(lines, "    This group has no open items!")
		}
		for _, item := range items {
			lines = append(lines, fmt.Sprintf(
				"    :thumbsup: %d  :thumbsdown: %d  %s - %s Created *%d* day(s) ago",
				item.Upvotes, item.Downvotes, item.Title, item.WebURL, item.DaysOpen,
			))
		}
	}

	return strings.Join(lines, "\n")
}
