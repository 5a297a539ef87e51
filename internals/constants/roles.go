package constants

// role values stored on users.role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// AdminAndAbove are roles allowed to manage content (trees, quests, badges).
var AdminAndAbove = []string{RoleAdmin, RoleOwner}

// OwnerOnly may manage other admins and run destructive maintenance.
var OwnerOnly = []string{RoleOwner}
