package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorError   = 0xED4245 // Red (alias for ColorDanger)
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
	ColorOrange  = 0xE67E22
	ColorPink    = 0xE91E63
	ColorPurple  = 0x9B59B6
	ColorGold    = 0xF1C40F
	ColorGray    = 0x607D8B
)

// Generic user-facing messages
const (
	MsgGenericError    = "❌ An error occurred while running this command."
	MsgInvalidArgs     = "❌ Invalid arguments"
	MsgMissingPerms    = "❌ You don't have permission to use this command!"
	MsgBotMissingPerms = "❌ I don't have permission to do that!"
	MsgOwnerOnly       = "❌ Only bot owners can use this command."
	MsgGuildOnly       = "❌ This command can only be used in a server."
)

// UI constants
const (
	MaxButtonsPerRow = 5
	MaxActionRows    = 5
	MaxEmbedTitle    = 256
	MaxMessageLength = 2000
)
