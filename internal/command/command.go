// Package command parses operator text lines into structured commands.
// Parsing is decoupled from effecting: the control loop decides what a
// command does, this package only decides what it says.
package command

import (
	"strconv"
	"strings"
)

// Kind identifies the command verb.
type Kind int

const (
	Unknown Kind = iota
	Status
	SetOn
	SetOff
	Save
	Help
)

// Command is a parsed operator command. Value is meaningful only for
// SetOn/SetOff. Range clamping happens where the command is applied,
// not here.
type Command struct {
	Kind  Kind
	Value int
}

// Parse turns one input line into a Command. Lines are trimmed and verbs are
// case-insensitive. Anything unrecognized, including SET with a malformed
// number, parses as Unknown.
func Parse(line string) Command {
	line = strings.ToUpper(strings.TrimSpace(line))

	switch line {
	case "STATUS":
		return Command{Kind: Status}
	case "SAVE":
		return Command{Kind: Save}
	case "HELP":
		return Command{Kind: Help}
	}

	if arg, found := strings.CutPrefix(line, "SET ON "); found {
		return parseSet(SetOn, arg)
	}
	if arg, found := strings.CutPrefix(line, "SET OFF "); found {
		return parseSet(SetOff, arg)
	}

	return Command{Kind: Unknown}
}

func parseSet(kind Kind, arg string) Command {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return Command{Kind: Unknown}
	}
	return Command{Kind: kind, Value: v}
}

// HelpText lists the commands the controller understands.
func HelpText() string {
	return strings.Join([]string{
		"Commands:",
		"  STATUS           -> print thresholds, state, raw extrema",
		"  SET ON <0-1023>  -> set ON threshold",
		"  SET OFF <0-1023> -> set OFF threshold",
		"  SAVE             -> persist thresholds",
		"  HELP             -> show this help",
	}, "\n")
}
