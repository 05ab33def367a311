// Command ppcmonitor is an interactive front end for the debug console
// port: it puts the terminal in raw mode, reads keystrokes one at a time
// and pushes each byte into the port's register file exactly as early
// boot firmware would, echoing the port's own output back to the
// terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"

	"ppccore/internal/debugconsole"
	"ppccore/internal/obslog"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	level := obslog.LevelInfo
	if *verbose {
		level = obslog.LevelTrace
	}
	logger := obslog.New(nil, level)
	console := debugconsole.New(os.Stdout, logger)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("failed to set raw mode: %v", err)
	}
	defer term.Restore(fd, oldState)

	fmt.Fprint(os.Stdout, "ppcmonitor: typed keys feed the debug console port; Ctrl+C exits\r\n")

	for {
		ch, key, err := keyboard.GetSingleKey()
		if err != nil {
			logger.Infof("keyboard read failed: %v", err)
			return
		}
		if key == keyboard.KeyCtrlC {
			return
		}

		switch key {
		case keyboard.KeyEnter:
			console.Write(1, 0)
		case keyboard.KeySpace:
			console.Write(0, ' ')
		default:
			if ch != 0 {
				console.Write(0, uint32(ch))
			}
		}
	}
}
