package dispatch

import (
	"fmt"

	"github.com/soyeahso/relaybot/internal/domain"
)

const (
	noticeInvalidChannel = ":warning:  Invalid channel."
	noticeTooLong        = ":warning:  Message is too long."
)

func writeDeniedNotice(botName string, ch domain.Channel) string {
	return fmt.Sprintf(
		":no_entry:  **%s** does not have permission to write at the **%s** channel on your server **%s**. Please fix.",
		botName, ch.Name, ch.GuildName)
}

func destinationDeniedNotice(dest domain.Channel) string {
	return fmt.Sprintf(":no_entry:  Bot does not have permission to write at the %s channel.", dest.Mention())
}

func attachmentCapNotice(limit, dropped int) string {
	return fmt.Sprintf(":warning:  Cannot attach more than %d files (%d not sent).", limit, dropped)
}

func embedCapNotice(limit, dropped int) string {
	return fmt.Sprintf(":warning:  Cannot embed more than %d links (%d not sent).", limit, dropped)
}

func privacyNotice(user domain.User) string {
	return fmt.Sprintf(":no_entry: User %s cannot receive direct messages by bot because of **privacy settings**.\n\n"+
		"__Auto forwarding has been stopped. To fix this:__\n"+
		"```prolog\nServer > Privacy Settings > 'Allow direct messages from server members'\n```",
		user.Mention())
}

// sourceLink is appended to webhook posts so readers can jump to the original.
func sourceLink(url string) string {
	return " ||[🔍](<" + url + ">)||"
}
