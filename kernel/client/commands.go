package client

import (
	"fmt"
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/craftops/panelsim/kernel/model"
)

// CommandHandler produces the canned output for one command keyword.
type CommandHandler func(u *model.Universe, lines []string) string

var commandRegistry = cmap.New[CommandHandler]()

// RegisterCommand installs a canned response for commands whose first token
// matches keyword, overwriting any previous handler. Tests extend the
// registry with their own commands.
func RegisterCommand(keyword string, handler CommandHandler) {
	commandRegistry.Set(keyword, handler)
}

func respond(u *model.Universe, lines []string) string {
	if len(lines) == 0 {
		return "ok"
	}
	fields := strings.Fields(lines[0])
	if len(fields) == 0 {
		return "ok"
	}
	if handler, ok := commandRegistry.Get(fields[0]); ok {
		return handler(u, lines)
	}
	return "ok"
}

func init() {
	RegisterCommand("systemctl", func(u *model.Universe, lines []string) string {
		if u.Instance != nil && u.Instance.State == model.StateRunning {
			return "active"
		}
		return "inactive"
	})
	RegisterCommand("list", func(u *model.Universe, lines []string) string {
		return fmt.Sprintf("There are %d of a max of 20 players online", u.PlayerCount)
	})
	RegisterCommand("whitelist", func(u *model.Universe, lines []string) string {
		return u.Parameters[model.ParamEmailAllowlist]
	})
	RegisterCommand("save-all", func(u *model.Universe, lines []string) string {
		return "Saved the game"
	})
}
