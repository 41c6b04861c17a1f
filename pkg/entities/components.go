package entities

// Custom IDs of the interactive components the bot sends.
const (
	// ComponentSupportRoles is the support role select menu of the configuration.
	ComponentSupportRoles = "config_support_roles"

	// ComponentCreateTicket is the button on the panel that opens a ticket.
	ComponentCreateTicket = "create_ticket"

	// ComponentCloseTicket is the button in a ticket channel that closes it.
	ComponentCloseTicket = "close_ticket"
)
