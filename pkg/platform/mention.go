package platform

import (
	"fmt"
	"strings"
)

// UserMention formats a mention of a user.
func UserMention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

// ChannelMention formats a link to a channel.
func ChannelMention(id string) string {
	return fmt.Sprintf("<#%s>", id)
}

// RoleMention formats a mention of a role.
func RoleMention(id string) string {
	return fmt.Sprintf("<@&%s>", id)
}

// RoleMentions joins the mentions of the roles, or returns none when there are no roles.
func RoleMentions(ids []string, none string) string {
	if len(ids) == 0 {
		return none
	}
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, RoleMention(id))
	}
	return strings.Join(mentions, ", ")
}
