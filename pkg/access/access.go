package access

import "github.com/Jacobbrewer1/ticketeer/pkg/platform"

const (
	// textAccess is what a participant needs to hold a conversation in a channel.
	textAccess = platform.PermissionViewChannel |
		platform.PermissionSendMessages |
		platform.PermissionReadMessageHistory |
		platform.PermissionAttachFiles |
		platform.PermissionEmbedLinks
)

// Profile describes the permissions granted to each principal on one kind of channel.
type Profile struct {
	EveryoneAllow platform.Permission
	EveryoneDeny  platform.Permission
	SupportAllow  platform.Permission
	SupportDeny   platform.Permission
	MemberAllow   platform.Permission
	MemberDeny    platform.Permission
}

var (
	// TicketChannel hides the ticket from everyone but the support roles and the author.
	TicketChannel = Profile{
		EveryoneDeny: platform.PermissionViewChannel | platform.PermissionSendMessages,
		SupportAllow: textAccess,
		SupportDeny:  platform.PermissionMentionEveryone,
		MemberAllow:  textAccess,
		MemberDeny:   platform.PermissionMentionEveryone,
	}

	// OpenTicketChannel lets everyone see the panel without talking in it.
	OpenTicketChannel = Profile{
		EveryoneAllow: platform.PermissionViewChannel | platform.PermissionReadMessageHistory,
		EveryoneDeny:  platform.PermissionSendMessages,
		SupportAllow:  platform.PermissionViewChannel | platform.PermissionSendMessages,
	}

	// TranscriptChannel is visible to the support roles only.
	TranscriptChannel = Profile{
		EveryoneDeny: platform.PermissionViewChannel | platform.PermissionSendMessages,
		SupportAllow: platform.PermissionViewChannel | platform.PermissionReadMessageHistory,
	}

	// Category hides the ticket category itself. Children that set their own overwrites are unaffected.
	Category = Profile{
		EveryoneDeny: platform.PermissionViewChannel | platform.PermissionSendMessages,
		SupportAllow: platform.PermissionViewChannel | platform.PermissionSendMessages,
	}
)

// Resolve maps the principals of a channel to its permission overwrites. memberID may be empty. The output
// holds one entry per principal; when IDs collide the grants are merged and allow wins over deny.
func Resolve(p Profile, everyoneRoleID string, supportRoleIDs []string, memberID string) []platform.Overwrite {
	out := make([]platform.Overwrite, 0, len(supportRoleIDs)+2)
	index := make(map[string]int, len(supportRoleIDs)+2)

	add := func(id string, typ platform.OverwriteType, allow, deny platform.Permission) {
		if id == "" {
			return
		}
		if i, ok := index[id]; ok {
			ow := &out[i]
			ow.Allow |= allow
			ow.Deny |= deny
			ow.Deny &^= ow.Allow
			return
		}
		index[id] = len(out)
		out = append(out, platform.Overwrite{
			ID:    id,
			Type:  typ,
			Allow: allow,
			Deny:  deny &^ allow,
		})
	}

	add(everyoneRoleID, platform.OverwriteTypeRole, p.EveryoneAllow, p.EveryoneDeny)
	for _, id := range supportRoleIDs {
		add(id, platform.OverwriteTypeRole, p.SupportAllow, p.SupportDeny)
	}
	add(memberID, platform.OverwriteTypeMember, p.MemberAllow, p.MemberDeny)

	return out
}
