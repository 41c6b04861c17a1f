package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMentions(t *testing.T) {
	require.Equal(t, "<@1>", UserMention("1"))
	require.Equal(t, "<#2>", ChannelMention("2"))
	require.Equal(t, "<@&3>", RoleMention("3"))
	require.Equal(t, "<@&3>, <@&4>", RoleMentions([]string{"3", "4"}, "none"))
	require.Equal(t, "none", RoleMentions(nil, "none"))
}
