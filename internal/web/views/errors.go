package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/garazh/internal/core"
)

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(msg core.UserMessage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong><p>%s</p><small>Code: %s</small></div>`,
			templ.EscapeString(msg.Message), templ.EscapeString(msg.Action), templ.EscapeString(msg.Code))
		return err
	})
}

// ErrorPage wraps ErrorAlert in a full document.
func ErrorPage(msg core.UserMessage) templ.Component {
	return page(msg.Message, ErrorAlert(msg))
}
