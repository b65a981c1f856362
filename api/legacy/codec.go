// Package legacy implements the older pipe-delimited ASCII variant of
// the protocol: a fixed two-player room with no matchmaking queue,
// where shot outcomes are a server-side placeholder instead of the
// client-reported results of the canonical protocol.
package legacy

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	VerbPlayer        = "PLAYER"
	VerbStart         = "START"
	VerbShips         = "SHIPS"
	VerbWait          = "WAIT"
	VerbYourPlacement = "YOURPLACEMENT"
	VerbFire          = "FIRE"
	VerbShot          = "SHOT"
	VerbError         = "ERROR"
	VerbPing          = "PING"
	VerbPong          = "PONG"
	VerbQuit          = "QUIT"
)

// Command is one parsed line of the legacy protocol.
type Command struct {
	Verb string
	Args []string
}

// Parse splits a pipe-delimited line into verb and arguments. FIRE is
// the one space-separated form: "FIRE <row> <col>|".
func Parse(line string) (Command, error) {
	line = strings.TrimSuffix(strings.TrimRight(line, "\r\n"), "|")
	if line == "" {
		return Command{}, fmt.Errorf("empty legacy line")
	}

	if strings.HasPrefix(line, VerbFire+" ") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("fire command needs row and col: %q", line)
		}
		return Command{Verb: VerbFire, Args: fields[1:]}, nil
	}

	parts := strings.Split(line, "|")
	return Command{Verb: parts[0], Args: parts[1:]}, nil
}

// Format renders a command back to its wire form, without the
// trailing newline.
func Format(cmd Command) string {
	if cmd.Verb == VerbFire {
		return fmt.Sprintf("%s %s|", VerbFire, strings.Join(cmd.Args, " "))
	}
	if cmd.Verb == VerbShips {
		// the one bare token of the protocol
		return VerbShips
	}
	return cmd.Verb + "|" + strings.Join(cmd.Args, "|")
}

// FireCoords extracts the numeric row/col of a FIRE command.
func FireCoords(cmd Command) (int, int, error) {
	if cmd.Verb != VerbFire || len(cmd.Args) != 2 {
		return 0, 0, fmt.Errorf("not a fire command: %v", cmd)
	}

	row, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad fire row %q: %w", cmd.Args[0], err)
	}
	col, err := strconv.Atoi(cmd.Args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad fire col %q: %w", cmd.Args[1], err)
	}
	return row, col, nil
}
