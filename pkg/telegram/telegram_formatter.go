package telegram

import (
	"fmt"
	"html"
)

// FormatErrorAlertMessage wraps a plain-text alert for a chat in HTML parse mode.
func FormatErrorAlertMessage(alert string) string {
	return fmt.Sprintf("📛 <b>[ERROR ALERT]</b>\n<pre>%s</pre>", html.EscapeString(alert))
}
