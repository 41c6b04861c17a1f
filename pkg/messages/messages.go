// Package messages holds the localized strings the bot replies with.
package messages

import (
	"errors"

	"github.com/Jacobbrewer1/ticketeer/pkg/apperrors"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
)

const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorDanger  = 0xED4245
)

// Catalog is every string of one language. Fields ending in F are fmt formats.
type Catalog struct {
	LanguageName string

	ErrUserErrorProcessing string
	ErrGuildNotConfigured  string
	ErrSessionNotFound     string
	ErrDuplicateTicket     string
	ErrNotATicketChannel   string
	ErrPlatformAction      string
	ErrInvalidSelection    string
	ErrRateLimited         string
	ErrNoCandidateRoles    string
	ErrGuildOnly           string

	ConfigTitle         string
	ConfigDescriptionF  string
	RolePlaceholder     string
	RoleOptionF         string
	ConfigDoneTitle     string
	ConfigDoneF         string
	PanelTitle          string
	PanelDescription    string
	PanelFooter         string
	CreateTicketLabel   string
	CloseTicketLabel    string
	TicketCreatedF      string
	TicketOpenedTitle   string
	TicketOpenedBody    string
	NewTicketPing       string
	FieldAuthor         string
	FieldChannel        string
	FieldPingedRoles    string
	FieldLogFile        string
	FieldClosedBy       string
	FieldMessages       string
	MessagesCountF      string
	None                string
	CreationNoticeTitle string
	TranscriptTitle     string
	TicketClosedReply   string
	HelpTitle           string
	HelpBody            string
}

var french = &Catalog{
	LanguageName: "Français",

	ErrUserErrorProcessing: "❌ Une erreur est survenue lors du traitement de votre demande.",
	ErrGuildNotConfigured:  "❌ Le bot n'est pas encore configuré sur ce serveur. Utilisez /config.",
	ErrSessionNotFound:     "❌ Configuration temporaire perdue. Relancez /config.",
	ErrDuplicateTicket:     "⚠️ Vous avez déjà un ticket ouvert.",
	ErrNotATicketChannel:   "❌ Ce salon n'est pas un ticket.",
	ErrPlatformAction:      "❌ Action refusée par Discord. Vérifiez les permissions et la position du rôle du bot.",
	ErrInvalidSelection:    "❌ Sélectionnez entre 1 et 10 rôles de support.",
	ErrRateLimited:         "⏳ Trop de demandes, réessayez dans un instant.",
	ErrNoCandidateRoles:    "❌ Aucun rôle ne peut être utilisé comme rôle de support.",
	ErrGuildOnly:           "❌ Cette commande ne fonctionne que sur un serveur.",

	ConfigTitle:        "⚙️ Configuration du Bot de Tickets",
	ConfigDescriptionF: "Sélectionnez les rôles de support que vous souhaitez configurer :\n\n**Configuration actuelle :**\n• Langue : %s\n• Salon de tickets : Sera créé automatiquement",
	RolePlaceholder:    "Sélectionnez les rôles de support...",
	RoleOptionF:        "Rôle : %s",
	ConfigDoneTitle:    "✅ Configuration terminée",
	ConfigDoneF:        "**Configuration enregistrée avec succès !**\n\n📋 **Détails :**\n• Salon de tickets : %s\n• Salon de transcript : %s\n• Langue : %s\n• Rôles de support : %s",

	PanelTitle:        "🎫 Tickets de support",
	PanelDescription:  "Cliquez sur le bouton ci-dessous pour ouvrir un ticket de support.\n\nUn membre du staff vous répondra rapidement !",
	PanelFooter:       "Système de tickets",
	CreateTicketLabel: "🎫 Créer un ticket",
	CloseTicketLabel:  "🔒 Fermer le ticket",

	TicketCreatedF:    "✅ Ticket créé : %s",
	TicketOpenedTitle: "🎫 Ticket ouvert",
	TicketOpenedBody:  "Un membre du support va vous répondre bientôt. 👨‍💻",
	NewTicketPing:     "Nouveau ticket créé !",

	FieldAuthor:      "👤 Auteur",
	FieldChannel:     "🎫 Salon",
	FieldPingedRoles: "👥 Rôles pingés",
	FieldLogFile:     "📁 Fichier log",
	FieldClosedBy:    "🔒 Fermé par",
	FieldMessages:    "📄 Messages",
	MessagesCountF:   "%d messages",
	None:             "Aucun",

	CreationNoticeTitle: "🎫 Ticket créé",
	TranscriptTitle:     "🔒 Ticket fermé",
	TicketClosedReply:   "🔒 Ticket fermé, transcript JSON envoyé.",

	HelpTitle: "🎫 Aide du Bot de Tickets",
	HelpBody: "**Commandes disponibles :**\n" +
		"• `/config lang:<langue>` : configure la langue et les rôles de support.\n" +
		"• `/help` : affiche cette aide.\n\n" +
		"**Utilisation :**\n" +
		"1. Utilisez `/config` pour configurer le bot.\n" +
		"2. Sélectionnez les rôles de support.\n" +
		"3. Le bot crée les salons nécessaires.\n" +
		"4. Cliquez sur « Créer un ticket » pour ouvrir un ticket.",
}

var english = &Catalog{
	LanguageName: "English",

	ErrUserErrorProcessing: "❌ There was an error processing your request.",
	ErrGuildNotConfigured:  "❌ The bot is not configured on this server yet. Use /config.",
	ErrSessionNotFound:     "❌ Temporary configuration lost. Please run /config again.",
	ErrDuplicateTicket:     "⚠️ You already have an open ticket.",
	ErrNotATicketChannel:   "❌ This channel is not a ticket.",
	ErrPlatformAction:      "❌ Discord rejected the action. Check the bot's permissions and role position.",
	ErrInvalidSelection:    "❌ Select between 1 and 10 support roles.",
	ErrRateLimited:         "⏳ Too many requests, try again in a moment.",
	ErrNoCandidateRoles:    "❌ No role can be used as a support role.",
	ErrGuildOnly:           "❌ This command only works in a server.",

	ConfigTitle:        "⚙️ Ticket Bot Configuration",
	ConfigDescriptionF: "Select the support roles you want to configure:\n\n**Current configuration:**\n• Language: %s\n• Ticket channel: Will be created automatically",
	RolePlaceholder:    "Select support roles...",
	RoleOptionF:        "Role: %s",
	ConfigDoneTitle:    "✅ Configuration Complete",
	ConfigDoneF:        "**Configuration saved successfully!**\n\n📋 **Details:**\n• Ticket channel: %s\n• Transcript channel: %s\n• Language: %s\n• Support roles: %s",

	PanelTitle:        "🎫 Support Tickets",
	PanelDescription:  "Click the button below to open a support ticket.\n\nA staff member will assist you soon!",
	PanelFooter:       "Ticket System",
	CreateTicketLabel: "🎫 Create a ticket",
	CloseTicketLabel:  "🔒 Close ticket",

	TicketCreatedF:    "✅ Ticket created: %s",
	TicketOpenedTitle: "🎫 Ticket opened",
	TicketOpenedBody:  "A support member will reply soon. 👨‍💻",
	NewTicketPing:     "New ticket created!",

	FieldAuthor:      "👤 Author",
	FieldChannel:     "🎫 Channel",
	FieldPingedRoles: "👥 Pinged roles",
	FieldLogFile:     "📁 Log file",
	FieldClosedBy:    "🔒 Closed by",
	FieldMessages:    "📄 Messages",
	MessagesCountF:   "%d messages",
	None:             "None",

	CreationNoticeTitle: "🎫 Ticket created",
	TranscriptTitle:     "🔒 Ticket closed",
	TicketClosedReply:   "🔒 Ticket closed, JSON transcript sent.",

	HelpTitle: "🎫 Ticket Bot Help",
	HelpBody: "**Available Commands:**\n" +
		"• `/config lang:<language>`: configure the bot language and support roles.\n" +
		"• `/help`: show this help menu.\n\n" +
		"**How to use:**\n" +
		"1. Use `/config` to set up the bot.\n" +
		"2. Select the support roles.\n" +
		"3. The bot will create the necessary channels.\n" +
		"4. Click the \"Create a ticket\" button to open a support ticket.",
}

var catalogs = map[entities.Language]*Catalog{
	entities.LanguageFrench:  french,
	entities.LanguageEnglish: english,
}

// For returns the catalog of lang, falling back to the default language.
func For(lang entities.Language) *Catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[entities.DefaultLanguage]
}

// ForError returns the reply for err. Errors that are not user facing get the generic reply.
func (c *Catalog) ForError(err error) string {
	switch {
	case !apperrors.IsUserFacing(err):
		return c.ErrUserErrorProcessing
	case errors.Is(err, apperrors.ErrGuildNotConfigured):
		return c.ErrGuildNotConfigured
	case errors.Is(err, apperrors.ErrSessionNotFound):
		return c.ErrSessionNotFound
	case errors.Is(err, apperrors.ErrDuplicateTicket):
		return c.ErrDuplicateTicket
	case errors.Is(err, apperrors.ErrNotATicketChannel):
		return c.ErrNotATicketChannel
	case errors.Is(err, apperrors.ErrInvalidSelection):
		return c.ErrInvalidSelection
	case errors.Is(err, apperrors.ErrPlatformActionFailed):
		return c.ErrPlatformAction
	}
	return c.ErrUserErrorProcessing
}
