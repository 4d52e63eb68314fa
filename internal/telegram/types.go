package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Update is one inbound event from the Bot API.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is a chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// User is the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// BotCommand is an entry of the bot's command menu.
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// ChatID returns the chat identifier in the form accepted by SendMessage.
func (c Chat) ChatID() string {
	return strconv.FormatInt(c.ID, 10)
}

// DisplayName picks the most descriptive name available for the chat.
func (c Chat) DisplayName() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Username != "":
		return c.Username
	case c.FirstName != "":
		return c.FirstName
	default:
		return "chat"
	}
}

// Command returns the bot command of the message without the leading slash,
// bot mention or arguments ("/temp@ShoreBot now" -> "temp"). It returns ""
// when the text is not a command.
func (m *Message) Command() string {
	cmd, _ := m.commandToken()
	return strings.ToLower(cmd)
}

// Mention returns the bot username a command is addressed to
// ("/temp@ShoreBot" -> "ShoreBot"), or "" when the command names no bot.
func (m *Message) Mention() string {
	_, mention := m.commandToken()
	return mention
}

// IsCommandFor reports whether the message is a command that username should
// answer. Commands naming another bot, as happens in groups, are not.
func (m *Message) IsCommandFor(username string) bool {
	cmd, mention := m.commandToken()
	if cmd == "" {
		return false
	}

	return mention == "" || username == "" || strings.EqualFold(mention, strings.TrimPrefix(username, "@"))
}

func (m *Message) commandToken() (string, string) {
	if m == nil || !strings.HasPrefix(m.Text, "/") {
		return "", ""
	}

	token, _, _ := strings.Cut(strings.TrimPrefix(m.Text, "/"), " ")
	token, _, _ = strings.Cut(token, "\n")
	cmd, mention, _ := strings.Cut(token, "@")

	return cmd, mention
}

func fromAPIUpdate(u tgbotapi.Update) Update {
	update := Update{UpdateID: int64(u.UpdateID)}

	if m := u.Message; m != nil {
		update.Message = &Message{
			MessageID: int64(m.MessageID),
			Date:      int64(m.Date),
			Text:      m.Text,
		}

		if m.From != nil {
			from := fromAPIUser(*m.From)
			update.Message.From = &from
		}

		if m.Chat != nil {
			update.Message.Chat = Chat{
				ID:        m.Chat.ID,
				Type:      m.Chat.Type,
				Title:     m.Chat.Title,
				Username:  m.Chat.UserName,
				FirstName: m.Chat.FirstName,
			}
		}
	}

	return update
}

func fromAPIUser(u tgbotapi.User) User {
	return User{
		ID:        u.ID,
		IsBot:     u.IsBot,
		FirstName: u.FirstName,
		Username:  u.UserName,
	}
}
