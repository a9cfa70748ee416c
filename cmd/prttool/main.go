// prttool is a CLI utility for inspecting PRT assets and light presets.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/prt-relight/internal/logger"
)

// errUsage reports a bad invocation; the usage text has already been printed.
var errUsage = errors.New("usage error")

func main() {
	defer logger.Sync()

	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errUsage
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "lights":
		return cmdLights(args, stdout, stderr)
	case "validate", "check":
		return cmdValidate(args, stdout, stderr)
	case "shade":
		return cmdShade(args, stdout, stderr)
	case "render":
		return cmdRender(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `prttool - PRT asset and lighting utility

Usage:
  prttool <command> [options]

Commands:
  lights [-format text|yaml]              List the light presets
  validate [options] <model>              Load a model and print its shape
  shade [options] <model>                 Write per-vertex colours as JSON
  render [options] -o out.png <model>     Render a shaded model to PNG

Asset options (validate, shade, render):
  -config <file>    Config file (default: standard location)
  -assets <dir>     Local asset directory
  -base-url <url>   Remote asset base URL
  -debug            Log asset loading to stderr

Shading options (shade, render):
  -light <n>        Light preset index
  -mode color|light Shading mode
  -rx, -ry, -rz     Light rotation in degrees

Examples:
  prttool lights -format yaml
  prttool validate -assets ./data 0277
  prttool shade -light 2 -ry 90 0277 > colors.json
  prttool render -mode light -size 512 -o 0277.png 0277`)
}
