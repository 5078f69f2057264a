package ui

import (
	"sync"

	"github.com/eiannone/keyboard"
)

// KeyEsc is emitted on the key channel for the Escape key.
const KeyEsc rune = 27

// KeySpace is emitted for the space bar, which keyboard reports as a key code.
const KeySpace rune = ' '

var (
	keyCh     chan rune
	startOnce sync.Once
	stopCh    = make(chan struct{})
	stopOnce  sync.Once
)

// StartKeyEvents returns a channel that emits single-key runes read without Enter.
// When no keyboard is available the channel never emits.
func StartKeyEvents() <-chan rune {
	startOnce.Do(func() {
		keyCh = make(chan rune, 64)
		if err := keyboard.Open(); err != nil {
			return
		}
		go func() {
			defer keyboard.Close()
			for {
				char, key, err := keyboard.GetKey()
				if err != nil {
					close(keyCh)
					return
				}
				r, ok := translateKey(char, key)
				if !ok {
					continue
				}
				select {
				case keyCh <- r:
				case <-stopCh:
					return
				default:
				}
			}
		}()
	})
	return keyCh
}

// StopKeyEvents releases the terminal. Pending keys are dropped.
func StopKeyEvents() {
	stopOnce.Do(func() {
		close(stopCh)
		_ = keyboard.Close()
	})
}

func translateKey(char rune, key keyboard.Key) (rune, bool) {
	switch {
	case key == 0:
		return char, true
	case key == keyboard.KeyEsc, key == keyboard.KeyCtrlC:
		return KeyEsc, true
	case key == keyboard.KeySpace:
		return KeySpace, true
	}
	return 0, false
}

// DrainKeys consumes any immediately available keys to avoid accidental triggers.
func DrainKeys() {
	ch := StartKeyEvents()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
