package window

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/gbcore/internal/joypad"
	"github.com/veandco/go-sdl2/sdl"
)

// Keys maps keyboard keys to the joypad buttons they press.
var Keys = map[sdl.Keycode]joypad.Button{
	sdl.K_z:         joypad.ButtonA,
	sdl.K_x:         joypad.ButtonB,
	sdl.K_BACKSPACE: joypad.ButtonSelect,
	sdl.K_RETURN:    joypad.ButtonStart,
	sdl.K_RIGHT:     joypad.ButtonRight,
	sdl.K_LEFT:      joypad.ButtonLeft,
	sdl.K_UP:        joypad.ButtonUp,
	sdl.K_DOWN:      joypad.ButtonDown,
}

// ParseKeys returns Keys with the remappings of s applied. s is a comma
// separated list of button=key pairs, keys being named as SDL names them.
func ParseKeys(s string) (map[sdl.Keycode]joypad.Button, error) {
	return parseKeys(s, sdl.GetKeyFromName)
}

func parseKeys(s string, lookup func(name string) sdl.Keycode) (map[sdl.Keycode]joypad.Button, error) {
	keys := make(map[sdl.Keycode]joypad.Button, len(Keys))
	for k, b := range Keys {
		keys[k] = b
	}
	if strings.TrimSpace(s) == "" {
		return keys, nil
	}

	for _, pair := range strings.Split(s, ",") {
		name, key, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("sdl: key mapping %q is not button=key", pair)
		}
		b, err := joypad.ParseButton(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		code := lookup(strings.TrimSpace(key))
		if code == sdl.K_UNKNOWN {
			return nil, fmt.Errorf("sdl: unknown key %q", key)
		}

		// a button is pressed by a single key
		for k, mapped := range keys {
			if mapped == b {
				delete(keys, k)
			}
		}
		keys[code] = b
	}
	return keys, nil
}
