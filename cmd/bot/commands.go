package main

import (
	"github.com/Jacobbrewer1/discordgo"
	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
)

const (
	// cmdConfig is the name of the configuration command.
	cmdConfig = "config"

	// cmdHelp is the name of the help command.
	cmdHelp = "help"

	// optLang is the language option of the configuration command.
	optLang = "lang"
)

// adminPermission restricts a command to administrators by default.
var adminPermission int64 = discordgo.PermissionAdministrator

var configCmd = &discordgo.ApplicationCommand{
	Name:                     cmdConfig,
	Description:              "Configure the ticket system",
	DefaultMemberPermissions: &adminPermission,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Name:        optLang,
			Description: "Language of the bot",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Français", Value: string(entities.LanguageFrench)},
				{Name: "English", Value: string(entities.LanguageEnglish)},
			},
		},
	},
}

var helpCmd = &discordgo.ApplicationCommand{
	Name:        cmdHelp,
	Description: "Show the help menu",
}

// slashCommands are registered in every guild the bot is in.
var slashCommands = []*discordgo.ApplicationCommand{
	configCmd,
	helpCmd,
}
