package assistant

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ecommerce-storefront/storefront/internal/storage"

	"github.com/google/uuid"
)

const (
	DefaultTitle = "New Chat"

	// FallbackReply is recorded when the assistant could not answer.
	FallbackReply = "Sorry, I couldn't get an answer."

	titleWords      = 8
	shortTitleWords = 3
)

var (
	ErrChatNotFound  = errors.New("chat not found")
	ErrEmptyQuestion = errors.New("question is empty")
)

type Sender string

const (
	FromUser Sender = "user"
	FromBot  Sender = "bot"
)

type Message struct {
	From      Sender    `json:"from"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Chat struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

func (c Chat) clone() Chat {
	c.Messages = append([]Message(nil), c.Messages...)
	return c
}

// Book is the chat history, newest chat first, mirrored to a storage.Store
// after every change.
type Book struct {
	mu    sync.Mutex
	store storage.Store
	asker Asker
	now   func() time.Time
	chats []Chat
}

func NewBook(store storage.Store, asker Asker) *Book {
	return &Book{store: store, asker: asker, now: time.Now}
}

// Load replaces the history with the mirror. An unreadable mirror is
// discarded.
func (b *Book) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var stored []Chat
	err := storage.LoadJSON(ctx, b.store, storage.ChatsKey, &stored)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		b.chats = nil
		return nil
	case err != nil:
		log.Printf("Assistant: discarding unreadable chat mirror: %v", err)
		b.chats = nil
		return b.store.Delete(ctx, storage.ChatsKey)
	}

	chats := make([]Chat, 0, len(stored))
	for _, c := range stored {
		if c.ID == "" {
			continue
		}
		if strings.TrimSpace(c.Title) == "" {
			c.Title = DefaultTitle
		}
		chats = append(chats, c)
	}
	b.chats = chats
	return nil
}

func (b *Book) commit(ctx context.Context, next []Chat) error {
	if err := storage.SaveJSON(ctx, b.store, storage.ChatsKey, next); err != nil {
		return fmt.Errorf("save chats: %w", err)
	}
	b.chats = next
	return nil
}

func (b *Book) snapshot() []Chat {
	out := make([]Chat, len(b.chats))
	for i, c := range b.chats {
		out[i] = c.clone()
	}
	return out
}

func (b *Book) index(id string) int {
	for i, c := range b.chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (b *Book) newChat(title string) Chat {
	if title = strings.TrimSpace(title); title == "" {
		title = DefaultTitle
	}
	return Chat{ID: uuid.NewString(), Title: title}
}

func (b *Book) Chats() []Chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Book) Get(id string) (Chat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.index(id)
	if i < 0 {
		return Chat{}, fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	return b.chats[i].clone(), nil
}

// New starts an empty chat at the top of the history.
func (b *Book) New(ctx context.Context, title string) (Chat, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chat := b.newChat(title)
	if err := b.commit(ctx, append([]Chat{chat}, b.snapshot()...)); err != nil {
		return Chat{}, err
	}
	return chat.clone(), nil
}

// Delete removes a chat. The history never ends up empty: deleting the last
// chat leaves a fresh one in its place.
func (b *Book) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrChatNotFound, id)
	}
	next := b.snapshot()
	next = append(next[:i], next[i+1:]...)
	if len(next) == 0 {
		next = []Chat{b.newChat("")}
	}
	return b.commit(ctx, next)
}

// Ask sends question to the assistant and records both sides in the chat
// with chatID, or in the newest chat when chatID is empty. The first
// question in an untitled chat becomes its title. When the assistant fails
// the exchange is still recorded, with FallbackReply as the answer, and the
// assistant's error is returned alongside the updated chat.
func (b *Book) Ask(ctx context.Context, chatID, question string) (Chat, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Chat{}, ErrEmptyQuestion
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.snapshot()
	i := 0
	switch {
	case chatID != "":
		if i = b.index(chatID); i < 0 {
			return Chat{}, fmt.Errorf("%w: %s", ErrChatNotFound, chatID)
		}
	case len(next) == 0:
		next = []Chat{b.newChat("")}
	}

	chat := &next[i]
	if chat.Title == DefaultTitle && len(chat.Messages) == 0 {
		chat.Title = TitleFrom(question)
	}
	chat.Messages = append(chat.Messages, Message{From: FromUser, Text: question, Timestamp: b.now()})

	var askErr error
	answer := FallbackReply
	if b.asker == nil {
		askErr = ErrNotConfigured
	} else if reply, err := b.asker.Ask(ctx, question); err != nil {
		log.Printf("Assistant: no answer for chat %s: %v", chat.ID, err)
		askErr = err
	} else {
		answer = reply
	}
	chat.Messages = append(chat.Messages, Message{From: FromBot, Text: answer, Timestamp: b.now()})

	if err := b.commit(ctx, next); err != nil {
		return Chat{}, err
	}
	return next[i].clone(), askErr
}

// TitleFrom makes a chat title from the first eight words of a question.
func TitleFrom(question string) string {
	return truncateWords(question, titleWords, DefaultTitle)
}

// ShortTitle is a chat title cut to three words for listings.
func ShortTitle(title string) string {
	return truncateWords(title, shortTitleWords, "")
}

func truncateWords(s string, n int, empty string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return empty
	}
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
