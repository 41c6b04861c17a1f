package platform

// Permission is a bit set of channel permissions. Values match the platform's wire bits.
type Permission int64

const (
	PermissionViewChannel        Permission = 1 << 10
	PermissionSendMessages       Permission = 1 << 11
	PermissionEmbedLinks         Permission = 1 << 14
	PermissionAttachFiles        Permission = 1 << 15
	PermissionReadMessageHistory Permission = 1 << 16
	PermissionMentionEveryone    Permission = 1 << 17
)

// Has reports whether every bit of other is set in p.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}

type OverwriteType int

const (
	OverwriteTypeRole OverwriteType = iota
	OverwriteTypeMember
)

// Overwrite is a permission overwrite for a role or member on a channel.
type Overwrite struct {
	ID    string        `json:"id"`
	Type  OverwriteType `json:"type"`
	Allow Permission    `json:"allow"`
	Deny  Permission    `json:"deny"`
}
