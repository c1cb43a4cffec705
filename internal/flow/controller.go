// Package flow implements the conversational lead intake state machine.
//
// The Controller owns one turn of the dialog: it loads the conversation
// state, routes the utterance (command, correction, wizard answer or free
// chat), mutates the state, sends exactly one reply and saves the state back.
// Persistence and notification failures are logged and never break the turn;
// only a failure to deliver the reply surfaces as an error.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/islogix/docubridge/internal/extract"
	"github.com/islogix/docubridge/internal/genai"
	"github.com/islogix/docubridge/internal/messaging"
	"github.com/islogix/docubridge/internal/models"
	"github.com/islogix/docubridge/internal/notify"
	"github.com/islogix/docubridge/internal/schema"
	"github.com/islogix/docubridge/internal/store"
	"github.com/islogix/docubridge/internal/validate"
)

// User-facing texts. Commands reply with these verbatim.
const (
	greetingText = `Здравствуйте! Я бот DocuBridge — помогаю переслать документы между Украиной, Россией и Беларусью.

/consult — рассчитать доставку и оставить заявку
/news — новости сервиса
/ai — задать вопрос о пересылке документов`

	consultIntroText = "Отлично! Задам несколько вопросов, чтобы рассчитать доставку. Если что-то нужно исправить — просто напишите об этом."

	newsText = `Новости DocuBridge:
• Работаем по маршрутам Украина ↔ Россия ↔ Беларусь.
• Пересылаем доверенности, дипломы, свидетельства и другие документы.
• Паспорта, товары, деньги и ценности не принимаются.
Чтобы оформить заявку — /consult`

	aiIntroText = "Напишите ваш вопрос о пересылке документов, и я постараюсь помочь."

	resetText = "Данные очищены. Напишите /consult, чтобы начать заново."

	emptyInputText = "Пожалуйста, напишите ответ текстом."

	// Degradation replies when the language model is unavailable or fails.
	chatUnavailableText = "Сейчас умные ответы временно недоступны. Напишите /consult, чтобы оформить заявку."
	chatErrorText       = "Извините, временная техническая пауза. Попробуйте ещё раз чуть позже."
)

// chatSystemPrompt steers the free-chat tier. It must never collect fields;
// that is the wizard's job.
const chatSystemPrompt = `Ты — ассистент сервиса DocuBridge по пересылке документов между Украиной, Россией и Беларусью.
Отвечай кратко и по делу на русском языке. Пересылаем только документы (доверенности, дипломы, свидетельства и т.п.);
паспорта, товары, деньги и ценности не принимаются. Если пользователь хочет оформить заявку, предложи команду /consult.`

// Controller drives the intake dialog for all conversations of one transport.
type Controller struct {
	store     store.Store
	msg       messaging.Service
	extractor *extract.Extractor
	chat      genai.ClientInterface
	notifier  notify.Notifier
}

// NewController wires a controller. chat may be nil (free chat degrades to a
// fixed reply); notifier may be nil (no operator notifications).
func NewController(st store.Store, msg messaging.Service, ex *extract.Extractor, chat genai.ClientInterface, n notify.Notifier) *Controller {
	return &Controller{store: st, msg: msg, extractor: ex, chat: chat, notifier: n}
}

// HandleUtterance processes one inbound message end to end. The returned
// error is non-nil only when the reply could not be delivered.
func (c *Controller) HandleUtterance(ctx context.Context, conversationID, text string) error {
	text = strings.TrimSpace(text)
	if err := c.msg.SendTypingIndicator(ctx, conversationID); err != nil {
		slog.Debug("Controller typing indicator failed", "conversation", conversationID, "error", err)
	}

	st := c.loadState(conversationID)

	if text == "" {
		return c.respond(ctx, st, text, emptyInputText, nil)
	}
	if strings.HasPrefix(text, "/") {
		return c.handleCommand(ctx, st, text)
	}
	if f, ok := detectCorrection(text); ok && st.Status != models.StatusIdle {
		return c.handleCorrection(ctx, st, f, text)
	}
	if st.Status == models.StatusCollecting {
		return c.handleCollecting(ctx, st, text)
	}
	return c.handleIdle(ctx, st, text)
}

// loadState fetches the conversation state, degrading to a fresh record when
// the store is unavailable or the conversation is new.
func (c *Controller) loadState(conversationID string) *models.ConversationState {
	st, err := c.store.GetConversationState(conversationID)
	if err != nil {
		slog.Warn("Controller failed to load conversation state", "conversation", conversationID, "error", err)
		st = nil
	}
	if st == nil {
		st = models.NewConversationState(conversationID)
	}
	return st
}

func (c *Controller) handleCommand(ctx context.Context, st *models.ConversationState, text string) error {
	cmd, rest, _ := strings.Cut(text, " ")
	switch strings.ToLower(cmd) {
	case "/start":
		// Greeting only. /reset is the sole command that wipes collected data.
		return c.respond(ctx, st, text, greetingText, []string{"/consult", "/news"})
	case "/consult":
		st.Reset()
		st.Status = models.StatusCollecting
		first := schema.ByIndex(0)
		return c.respond(ctx, st, text, consultIntroText+"\n\n"+first.Prompt, first.Choices)
	case "/news":
		return c.respond(ctx, st, text, newsText, nil)
	case "/ai":
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return c.respond(ctx, st, text, aiIntroText, nil)
		}
		return c.respond(ctx, st, text, c.chatReply(ctx, rest), nil)
	case "/reset":
		st.Reset()
		return c.respond(ctx, st, text, resetText, nil)
	default:
		// Unknown commands are treated as ordinary text.
		if st.Status == models.StatusCollecting {
			return c.handleCollecting(ctx, st, text)
		}
		return c.handleIdle(ctx, st, text)
	}
}

// handleCollecting processes a wizard answer. Opportunistic extraction runs
// first so a single message can fill several fields; when it yields nothing
// new, the text is validated strictly against the field currently asked.
func (c *Controller) handleCollecting(ctx context.Context, st *models.ConversationState, text string) error {
	found := c.extractor.Extract(ctx, text, st.Lead)
	if merged, changed := Merge(st.Lead, found); changed {
		st.Lead = merged
		return c.advance(ctx, st, text, "Принято. ")
	}

	f := schema.ByIndex(st.ExpectedIndex)
	v, err := validate.ForField(f).Validate(text)
	if err != nil {
		// The validation message is the re-prompt; the cursor does not move.
		return c.respond(ctx, st, text, err.Error(), f.Choices)
	}
	st.Lead[f.Key] = v
	st.Lead.DeriveWeight()
	return c.advance(ctx, st, text, "")
}

// advance repositions the cursor at the first missing field and either asks
// the next question or finalizes the lead.
func (c *Controller) advance(ctx context.Context, st *models.ConversationState, userText, ack string) error {
	st.ExpectedIndex = FirstMissing(st.Lead)
	if Complete(st.Lead) {
		return c.finalize(ctx, st, userText)
	}
	next := schema.ByIndex(st.ExpectedIndex)
	return c.respond(ctx, st, userText, ack+next.Prompt, next.Choices)
}

// handleIdle covers conversations that are not collecting, idle and completed
// alike: an utterance carrying recognizable lead details opens a fresh wizard
// with those fields pre-filled, anything else goes to the free-chat tier.
func (c *Controller) handleIdle(ctx context.Context, st *models.ConversationState, text string) error {
	found := c.extractor.Extract(ctx, text, models.NewLeadData())
	if merged, changed := Merge(models.NewLeadData(), found); changed {
		st.Status = models.StatusCollecting
		st.Lead = merged
		return c.advance(ctx, st, text, consultIntroText+"\n\n")
	}
	return c.respond(ctx, st, text, c.chatReply(ctx, text), nil)
}

// chatReply answers free-form text through the language model, with fixed
// fallbacks when the model is unconfigured or errors out.
func (c *Controller) chatReply(ctx context.Context, text string) string {
	if c.chat == nil {
		return chatUnavailableText
	}
	reply, err := c.chat.GeneratePrompt(ctx, chatSystemPrompt, text)
	if err != nil {
		slog.Warn("Controller chat completion failed", "error", err)
		return chatErrorText
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return chatErrorText
	}
	return reply
}

// respond delivers the reply, then records the exchange, mirrors it and saves
// the state. Everything after delivery is best-effort.
func (c *Controller) respond(ctx context.Context, st *models.ConversationState, userText, reply string, choices []string) error {
	var sendErr error
	if len(choices) > 0 {
		sendErr = c.msg.SendMessageWithChoices(ctx, st.ConversationID, reply, choices)
	} else {
		sendErr = c.msg.SendMessage(ctx, st.ConversationID, reply)
	}
	if sendErr != nil {
		return fmt.Errorf("failed to send reply: %w", sendErr)
	}

	if err := c.store.AddMessage(models.ChatMessage{
		ConversationID: st.ConversationID,
		UserMessage:    userText,
		BotReply:       reply,
		Time:           time.Now(),
	}); err != nil {
		slog.Warn("Controller failed to record chat history", "conversation", st.ConversationID, "error", err)
	}
	if c.notifier != nil {
		if err := c.notifier.MirrorExchange(ctx, st.ConversationID, userText, reply); err != nil {
			slog.Warn("Controller failed to mirror exchange", "conversation", st.ConversationID, "error", err)
		}
	}

	st.UpdatedAt = time.Now()
	if err := c.store.SaveConversationState(*st); err != nil {
		slog.Warn("Controller failed to save conversation state", "conversation", st.ConversationID, "error", err)
	}
	return nil
}
