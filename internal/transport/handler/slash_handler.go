package handler

import (
	"io"
	"net/http"

	"github.com/lsdops/slashreport/internal/domain"
	"github.com/lsdops/slashreport/internal/transport/dto/request"
	"github.com/lsdops/slashreport/internal/transport/dto/response"
	"github.com/lsdops/slashreport/internal/usecase/service"
	"go.uber.org/zap"
)

type Verifier interface {
	Verify(rawBody []byte, timestamp int64, signature, channelID string) bool
}

type Dispatcher interface {
	Dispatch(cmd domain.InboundCommand, kind domain.ItemKind)
}

type SlashHandler struct {
	verifier  Verifier
	responder Dispatcher
	log       *zap.Logger
}

func NewSlashHandler(verifier Verifier, responder Dispatcher, log *zap.Logger) *SlashHandler {
	return &SlashHandler{
		verifier:  verifier,
		responder: responder,
		log:       log,
	}
}

// Slash принимает команду, проверяет подпись, классифицирует текст и запускает
// отложенный отчёт. Синхронный ответ уходит сразу, не дожидаясь отчёта.
func (h *SlashHandler) Slash(w http.ResponseWriter, r *http.Request) {
	h.log.Info("slash command received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error("failed to read request body", zap.Error(err))
		WriteJSON(w, http.StatusOK, response.Denied())
		return
	}

	// Снимок снимается синхронно, до запуска любой горутины
	cmd := request.ParseSlashCommand(r, rawBody)

	if !h.verifier.Verify(cmd.RawBody, cmd.Timestamp, cmd.Signature, cmd.ChannelID) {
		h.log.Warn("slash command rejected",
			zap.String("code", service.ErrNotAuthorized.Code),
			zap.String("channel_id", cmd.ChannelID),
		)
		WriteJSON(w, http.StatusOK, response.Denied())
		return
	}

	kind, ok := domain.ClassifyCommand(cmd.Text)
	if !ok {
		// Неизвестный текст: только help, отложенная работа не запускается
		h.log.Info("unknown command text, sending help",
			zap.String("command", cmd.Command),
			zap.String("text", cmd.Text),
		)
		WriteJSON(w, http.StatusOK, response.Help(cmd.Command))
		return
	}

	h.responder.Dispatch(cmd, kind)

	h.log.Info("slash command dispatched",
		zap.String("kind", string(kind)),
		zap.String("channel_id", cmd.ChannelID),
		zap.String("user_id", cmd.UserID),
	)
	WriteJSON(w, http.StatusOK, response.Collecting())
}
