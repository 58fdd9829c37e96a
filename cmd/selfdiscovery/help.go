// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/selfdiscovery/selfdiscovery/internal/discovery"
	"github.com/selfdiscovery/selfdiscovery/internal/luahost"
)

const usageText = `This program gathers information about your system for a controller.
Generally, this is used by software build scripts to configure themselves for
your system. The controller is specified by CONTROLLER and tells this program
which information it should gather. Controllers ending in .lua run on the
embedded interpreter, other controllers are started as programs and talk to
selfdiscovery over their stdin and stdout. Use -- as CONTROLLER to type
requests yourself.

CONFIGURATION... can be any number of KEY or KEY=VALUE tokens. In addition to
the values listed for a controller, the following are always understood:
Help displays this message. ControllerHelp displays documentation for writing
controllers. Verbose explains how and where information is being found. If you
specify CONTROLLER as well as Help, the values that can be used to override or
guide discovery for that controller are listed below.

Any CONFIGURATION... value can also be placed in configuration files, one per
line. Values from configuration files have lower precedence than the command
line. The configuration files loaded are, by increasing precedence:`

const controllerText = `A controller makes requests for information and processes the returned
information. Its name must be the first argument to selfdiscovery.

Lua controllers call the functions of the Discover table with a table of
arguments. Other controllers are started with SELFDISCOVERY_MODE in their
environment, receive the mode ("normal" or "help") as the first message on
stdin and then write one request per message on stdout: whitespace separated
words, quoted with "" or escaped with \ where needed, terminated by an empty
line. Every request is answered with one "Name value..." line per returned
field followed by an empty line; an empty answer means nothing was found.

If the controller is invoked in help mode, all information queries return nil
and the controller should refrain from changing the system state. Lua
controllers can check for help mode with Discover.HelpMode().
Discover.ControllerLocation() returns the directory containing the controller.`

var examples = []string{
	"selfdiscovery Help",
	"selfdiscovery ControllerHelp",
	"selfdiscovery example.lua Help",
	"selfdiscovery example.lua",
	`selfdiscovery example.lua Verbose Program-gcc="/usr/local/bin/gcc"`,
	`selfdiscovery "python3 configure.py" Prefix=/opt/example`,
}

// printHelp prints the usage text. With a controller, the overrides it
// consults follow once it has run in help mode.
func (a *app) printHelp(configPaths []string, withController bool) {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Usage:") + "\n")
	b.WriteString("\tselfdiscovery CONFIGURATION...\n")
	b.WriteString("\tselfdiscovery CONTROLLER CONFIGURATION...\n\n")
	b.WriteString(indent(usageText) + "\n")
	for _, path := range configPaths {
		fmt.Fprintf(&b, "\t%s\n", path)
	}
	b.WriteString("\n" + SubtitleStyle.Render("Examples:") + "\n")
	for _, example := range examples {
		fmt.Fprintf(&b, "\t%s\n", CmdStyle.Render(example))
	}
	b.WriteString("\n")
	if withController {
		b.WriteString(SubtitleStyle.Render("Additional CONFIGURATION... values relevant to this controller:") + "\n\n")
	}
	fmt.Fprint(a.stdout, b.String())
}

// printHelpItems lists the overrides gathered while the controller ran in
// help mode.
func (a *app) printHelpItems(items *discovery.HelpItems) {
	var b strings.Builder
	for _, item := range items.Sorted() {
		fmt.Fprintf(&b, "\t%s\n", CmdStyle.Render(item.Argument))
		for _, description := range item.Descriptions {
			fmt.Fprintf(&b, "\t%s\n", description)
		}
		b.WriteString("\n")
	}
	fmt.Fprint(a.stdout, b.String())
}

// printControllerHelp documents the controller protocol, the Lua utilities
// and every request in registration order.
func (a *app) printControllerHelp(registry *discovery.Registry) {
	var b strings.Builder
	b.WriteString(indent(controllerText) + "\n\n")
	b.WriteString(SubtitleStyle.Render("The following utilities are available to Lua controllers:") + "\n\n")
	b.WriteString(indent(luahost.UtilityUsage) + "\n\n")
	b.WriteString(SubtitleStyle.Render("The following information queries can be made by the controller:") + "\n\n")
	for _, anchor := range registry.Anchors() {
		b.WriteString(indent(anchor.Usage()) + "\n\n")
	}
	fmt.Fprint(a.stdout, b.String())
}

// indent prefixes every non-empty line of text with a tab.
func indent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "\t" + line
		}
	}
	return strings.Join(lines, "\n")
}
