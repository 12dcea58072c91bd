package prompt

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/renamekit/internal/input/keymap"
)

var specialKeys = map[tcell.Key]string{
	tcell.KeyEscape:     "Esc",
	tcell.KeyEnter:      "Enter",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Shift+Tab",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyInsert:     "Insert",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PgUp",
	tcell.KeyPgDn:       "PgDn",
}

// KeyName returns the key map name of a key event, such as "F2",
// "Shift+Esc" or "Ctrl+R".
func KeyName(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	var name string

	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		if ev.Rune() == ' ' {
			name = "Space"
		} else {
			name = string(ev.Rune())
		}
	case specialKeys[k] != "":
		name = specialKeys[k]
	case k >= tcell.KeyF1 && k <= tcell.KeyF64:
		name = "F" + strconv.Itoa(int(k-tcell.KeyF1)+1)
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		name = string(rune('A' + k - tcell.KeyCtrlA))
		mods |= tcell.ModCtrl
	case k == tcell.KeyCtrlSpace:
		name = "Space"
		mods |= tcell.ModCtrl
	default:
		return ""
	}

	var sb strings.Builder
	for _, m := range []struct {
		mask tcell.ModMask
		name string
	}{
		{tcell.ModCtrl, "Ctrl"},
		{tcell.ModAlt, "Alt"},
		{tcell.ModMeta, "Meta"},
		{tcell.ModShift, "Shift"},
	} {
		// Shift is part of printable runes
		if mods&m.mask != 0 && !(m.mask == tcell.ModShift && ev.Key() == tcell.KeyRune) {
			sb.WriteString(m.name)
			sb.WriteByte('+')
		}
	}
	sb.WriteString(name)
	return keymap.NormalizeKey(sb.String())
}
