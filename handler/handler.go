package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"finance-bot/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// Conversation is the engine surface the webhook drives.
type Conversation interface {
	HandleText(ctx context.Context, raw string) usecase.Result
	HandleChoice(ctx context.Context, choiceID, interactionID string) usecase.Result
}

// update is the subset of a Telegram Update the bot reads.
type update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *message       `json:"message"`
	CallbackQuery *callbackQuery `json:"callback_query"`
}

type message struct {
	Chat chat    `json:"chat"`
	Text *string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

type callbackQuery struct {
	ID   string `json:"id"`
	From user   `json:"from"`
	Data string `json:"data"`
}

type user struct {
	ID int64 `json:"id"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type Handler struct {
	conversation Conversation
	ownerID      string
}

func NewHandler(c Conversation, ownerChatID string) (*Handler, error) {
	if c == nil {
		return nil, errors.New("handler: conversation must not be nil")
	}
	ownerChatID = strings.TrimSpace(ownerChatID)
	if ownerChatID == "" {
		return nil, errors.New("handler: owner chat id must not be empty")
	}
	return &Handler{conversation: c, ownerID: ownerChatID}, nil
}

// Handle always acknowledges with 200 so Telegram never redelivers.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := slog.Default().With("correlation_id", correlationID)
	ctx = usecase.WithLogger(ctx, log)

	var u update
	if err := json.Unmarshal([]byte(req.Body), &u); err != nil {
		log.Warn("malformed update ignored", "err", err)
		return ack(correlationID), nil
	}
	log = log.With("update_id", u.UpdateID)
	ctx = usecase.WithLogger(ctx, log)

	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if !h.isOwner(cb.From.ID) {
			log.Info("callback from unknown sender ignored", "sender_id", cb.From.ID)
			break
		}
		res := h.conversation.HandleChoice(ctx, cb.Data, cb.ID)
		log.Info("choice handled", "action", res.Action, "step", res.Step, "outcome", res.Outcome)

	case u.Message != nil:
		msg := u.Message
		if !h.isOwner(msg.Chat.ID) {
			log.Info("message from unknown chat ignored", "chat_id", msg.Chat.ID)
			break
		}
		if msg.Text == nil {
			log.Debug("non-text message ignored")
			break
		}
		res := h.conversation.HandleText(ctx, *msg.Text)
		log.Info("text handled", "action", res.Action, "step", res.Step, "outcome", res.Outcome)
	}

	return ack(correlationID), nil
}

func (h *Handler) isOwner(id int64) bool {
	return strconv.FormatInt(id, 10) == h.ownerID
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func ack(correlationID string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(okResponse{OK: true})
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}
