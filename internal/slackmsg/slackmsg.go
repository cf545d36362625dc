// Package slackmsg builds the Slack messages GiphyGetter replies with and
// decodes the button values Slack sends back.
package slackmsg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/slack-go/slack"
)

// Button actions. Each button's value is "action|url|keyword".
const (
	ActionBan     = "ban"
	ActionDelete  = "delete"
	ActionReserve = "reserve"
	ActionRetry   = "retry"
)

// placeholder fills unused action value fields.
const placeholder = "nothing"

// Fallback is shown by clients that cannot render attachments.
const Fallback = "Someone posted a GIF using GiphyGetter!"

// ErrInvalidAction means a button value could not be decoded.
var ErrInvalidAction = errors.New("invalid action value")

// Action is a decoded button press.
type Action struct {
	Name    string
	URL     string
	Keyword string
}

// EncodeAction renders a button value.
func EncodeAction(name, url, keyword string) string {
	if url == "" {
		url = placeholder
	}
	if keyword == "" {
		keyword = placeholder
	}
	return name + "|" + url + "|" + keyword
}

// ParseAction decodes a button value. The keyword is everything after the
// second separator, so keywords containing "|" survive.
func ParseAction(value string) (Action, error) {
	parts := strings.SplitN(value, "|", 3)
	if len(parts) != 3 || parts[0] == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrInvalidAction, value)
	}

	a := Action{Name: parts[0], URL: parts[1], Keyword: parts[2]}
	if a.URL == placeholder {
		a.URL = ""
	}
	if a.Keyword == placeholder {
		a.Keyword = ""
	}
	return a, nil
}

// GifMessage is the in-channel reply carrying a gif and its follow-up
// buttons. The reserve button is offered only for gifs that are not
// already reserved; the ban button is always last.
func GifMessage(keyword, url string, reserved bool) slack.Msg {
	actions := []slack.AttachmentAction{
		{
			Name:  "action",
			Text:  "Different GIF",
			Type:  "button",
			Value: EncodeAction(ActionRetry, "", keyword),
		},
		{
			Name:  "action",
			Text:  "Delete",
			Type:  "button",
			Value: EncodeAction(ActionDelete, "", ""),
		},
	}

	if !reserved {
		actions = append(actions, slack.AttachmentAction{
			Name:  "action",
			Text:  "Reserve",
			Type:  "button",
			Value: EncodeAction(ActionReserve, url, keyword),
			Confirm: &slack.ConfirmationField{
				Title: "Reserve this search term?",
				Text: fmt.Sprintf("If you reserve this term (%s), it will always return this gif, and if "+
					"this term is already reserved, that gif will be replaced with this one.", keyword),
				OkText:      "Reserve",
				DismissText: "Cancel",
			},
		})
	}

	actions = append(actions, slack.AttachmentAction{
		Name:  "action",
		Text:  "Banish",
		Type:  "button",
		Style: "danger",
		Value: EncodeAction(ActionBan, url, ""),
		Confirm: &slack.ConfirmationField{
			Title:       "Banish this gif?",
			Text:        "If you banish this gif, it will never show up in any GiphyGetter search again.",
			OkText:      "Banish",
			DismissText: "Cancel",
		},
	})

	return slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Attachments: []slack.Attachment{
			{
				Fallback:   Fallback,
				CallbackID: uuid.NewString(),
				ImageURL:   url,
				Actions:    actions,
			},
		},
	}
}

// DeleteOriginal asks Slack to remove the message the button was on.
func DeleteOriginal() slack.Msg {
	return slack.Msg{DeleteOriginal: true}
}

// NotFound is the ephemeral reply when no gif could be found.
func NotFound(keyword string) slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         fmt.Sprintf("No GIF found for \"%s\".", keyword),
	}
}

// Failure is the ephemeral reply when an action could not be completed.
func Failure(text string) slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         text,
	}
}
