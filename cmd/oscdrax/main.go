// Command oscdrax plays, renders and scripts the four-track wavetable synth.
//
// Usage:
//
//	oscdrax play [-config file]
//	oscdrax render -o out.wav [-seconds n] [-state file] [-analyze]
//	oscdrax script [-o out.wav] [-config file] file.lua
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "play":
		playCmd(args)
	case "render":
		renderCmd(args)
	case "script":
		scriptCmd(args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "  play [-config file]")
	fmt.Fprintln(os.Stderr, "  render -o out.wav [-seconds n] [-state file] [-analyze]")
	fmt.Fprintln(os.Stderr, "  script [-o out.wav] [-config file] file.lua")
}
