package registry

import (
	"context"
	"testing"

	"cerealbot/bot/common"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, *common.Invocation) error { return nil }

func command(name string, perms Permissions) Command {
	return Command{
		Definition:  &discordgo.ApplicationCommand{Name: name, Description: name},
		Handler:     noop,
		Permissions: perms,
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(command("ping", Permissions{})))

	err := r.Register(command("ping", Permissions{}))

	assert.ErrorIs(t, err, ErrDuplicateCommand)
	assert.Equal(t, 1, r.Len())
}

func TestRegister_RejectsIncompleteEntries(t *testing.T) {
	r := New()
	assert.Error(t, r.Register(Command{Definition: &discordgo.ApplicationCommand{}, Handler: noop}))
	assert.Error(t, r.Register(Command{Definition: &discordgo.ApplicationCommand{Name: "x"}}))
}

func TestRegister_AdvertisesPermissions(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(command("kick", Permissions{User: discordgo.PermissionKickMembers, GuildOnly: true})))

	cmd, err := r.Resolve("kick")
	require.NoError(t, err)
	require.NotNil(t, cmd.Definition.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionKickMembers), *cmd.Definition.DefaultMemberPermissions)
	require.NotNil(t, cmd.Definition.Contexts)
	assert.Equal(t, []discordgo.InteractionContextType{discordgo.InteractionContextGuild}, *cmd.Definition.Contexts)
}

func TestResolve_NotFound(t *testing.T) {
	_, err := New().Resolve("missing")
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestResolve_Aliases(t *testing.T) {
	r := New()
	calc := command("calculate", Permissions{})
	calc.Aliases = []string{"calc", "math"}
	require.NoError(t, r.Register(calc))

	for _, name := range []string{"calculate", "calc", "math"} {
		cmd, err := r.Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, "calculate", cmd.Name())
	}
	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.Definitions(), 1)
}

func TestRegister_AliasCollisions(t *testing.T) {
	r := New()
	remind := command("remind", Permissions{})
	remind.Aliases = []string{"remindme"}
	require.NoError(t, r.Register(remind))

	t.Run("alias shadows a command", func(t *testing.T) {
		c := command("timer", Permissions{})
		c.Aliases = []string{"remind"}
		assert.ErrorIs(t, r.Register(c), ErrDuplicateCommand)
	})

	t.Run("name shadows an alias", func(t *testing.T) {
		assert.ErrorIs(t, r.Register(command("remindme", Permissions{})), ErrDuplicateCommand)
	})

	t.Run("repeated alias", func(t *testing.T) {
		c := command("timezone", Permissions{})
		c.Aliases = []string{"tz", "tz"}
		assert.ErrorIs(t, r.Register(c), ErrDuplicateCommand)
	})

	assert.Equal(t, 1, r.Len())
	_, err := r.Resolve("timer")
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestDefinitions_KeepRegistrationOrder(t *testing.T) {
	r := New()
	r.MustRegister(command("b", Permissions{}), command("a", Permissions{}), command("c", Permissions{}))

	var names []string
	for _, d := range r.Definitions() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	r := New()
	assert.Panics(t, func() {
		r.MustRegister(command("a", Permissions{}), command("a", Permissions{}))
	})
}

func TestComponents(t *testing.T) {
	r := New()
	called := false
	require.NoError(t, r.RegisterComponent("tod", func(context.Context, *common.Invocation) error {
		called = true
		return nil
	}))
	assert.ErrorIs(t, r.RegisterComponent("tod", noop), ErrDuplicateComponent)
	assert.Error(t, r.RegisterComponent("a:b", noop))

	h, err := r.ResolveComponent(ComponentID("tod", "abc", "truth"))
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), nil))
	assert.True(t, called)

	_, err = r.ResolveComponent("giveaway:1")
	assert.ErrorIs(t, err, ErrComponentNotFound)

	assert.Equal(t, []string{"abc", "truth"}, ComponentParts("tod:abc:truth"))
}

func TestCheckPermissions(t *testing.T) {
	kick := command("kick", Permissions{User: discordgo.PermissionKickMembers, Bot: discordgo.PermissionKickMembers, GuildOnly: true})
	sync := command("sync", Permissions{OwnerOnly: true})
	ping := command("ping", Permissions{})
	poll := command("poll", Permissions{Bot: discordgo.PermissionAddReactions})
	say := command("say", Permissions{User: discordgo.PermissionManageMessages})

	tests := []struct {
		name    string
		invoker Invoker
		cmd     Command
		ok      bool
		message string
	}{
		{"no requirements", Invoker{}, ping, true, ""},
		{"member with permission", Invoker{InGuild: true, UserPermissions: discordgo.PermissionKickMembers, BotPermissions: discordgo.PermissionKickMembers}, kick, true, ""},
		{"administrator implies all", Invoker{InGuild: true, UserPermissions: discordgo.PermissionAdministrator, BotPermissions: discordgo.PermissionAdministrator}, kick, true, ""},
		{"member without permission", Invoker{InGuild: true, BotPermissions: discordgo.PermissionKickMembers}, kick, false, common.MsgMissingPerms},
		{"bot without permission", Invoker{InGuild: true, UserPermissions: discordgo.PermissionKickMembers}, kick, false, common.MsgBotMissingPerms},
		{"guild only from DM", Invoker{}, kick, false, common.MsgGuildOnly},
		{"owner only", Invoker{InGuild: true, UserPermissions: discordgo.PermissionAdministrator}, sync, false, common.MsgOwnerOnly},
		{"owner", Invoker{Owner: true}, sync, true, ""},
		{"bot permission ignored in DM", Invoker{}, poll, true, ""},
		{"bot permission enforced in guild", Invoker{InGuild: true}, poll, false, common.MsgBotMissingPerms},
		{"member permission from DM", Invoker{}, say, false, common.MsgGuildOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, message := CheckPermissions(tt.invoker, &tt.cmd)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestInvokerFrom(t *testing.T) {
	i := &discordgo.Interaction{
		GuildID:        "1",
		AppPermissions: discordgo.PermissionBanMembers,
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "42"},
			Permissions: discordgo.PermissionKickMembers,
		},
	}

	inv := InvokerFrom(i, func(id string) bool { return id == "42" })

	assert.Equal(t, Invoker{
		UserPermissions: discordgo.PermissionKickMembers,
		BotPermissions:  discordgo.PermissionBanMembers,
		Owner:           true,
		InGuild:         true,
	}, inv)
}
