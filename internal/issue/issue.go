// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	InteractionFailedId Id = iota + 1
	ControllerMisbehavedId
	InternalErrorId
	ControllerStartFailedId
	ConfigInvalidId
	ProgramNotFoundId
	LibraryNotFoundId
	CompilerNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the guidance with a trailing link list.
func (i *Issue) Markdown() string {
	var b strings.Builder
	b.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		b.WriteString("\n\n## See also\n")
		for _, link := range i.extLinks {
			b.WriteString("- <" + string(link) + ">\n")
		}
	}
	return b.String()
}

// Render renders the guidance for a terminal. An empty stylePath picks the
// "auto" style.
func (i *Issue) Render(stylePath string) (string, error) {
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	interactionFailedIssue = &Issue{
		id: InteractionFailedId,
		mdMsg: `
# Self discovery could not finish

Something the build needs could not be found or was configured incorrectly.

## Things you can try
- Rerun in help mode to list every override this build understands:
~~~
$ selfdiscovery ./controller Help
~~~
- Pass overrides such as ` + "`Program-gcc=/usr/bin/gcc-13`" + ` on the command line, or put
  them in a ` + "`selfdiscovery.config`" + ` file in the working directory.`,
	}

	controllerMisbehavedIssue = &Issue{
		id: ControllerMisbehavedId,
		mdMsg: `
# The controller sent a request that could not be understood

This is a problem with the project's configuration script, not with your system.

## Things you can try
- Make sure you have the latest version of selfdiscovery.
- If you do and the problem persists, report it to the package maintainer
  together with the failing request shown above.
- Authors can list every request and its arguments with:
~~~
$ selfdiscovery ./controller ControllerHelp
~~~`,
	}

	internalErrorIssue = &Issue{
		id: InternalErrorId,
		mdMsg: `
# Internal error

Self discovery hit a condition it should never reach.

## Things you can try
- Rerun with ` + "`Verbose`" + ` and report the full output to the selfdiscovery maintainers.`,
	}

	controllerStartFailedIssue = &Issue{
		id: ControllerStartFailedId,
		mdMsg: `
# The controller could not be started

The first argument names the controller program, which must be executable.

## Things you can try
- Check the path and the executable bit of the controller.
- Quote controller commands that contain spaces:
~~~
$ selfdiscovery "python3 configure.py"
~~~
- Use ` + "`--`" + ` to drive the engine from your terminal instead.`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# An override has an invalid value

Overrides come from the command line and from ` + "`selfdiscovery.config`" + ` files.
Later sources win: the global file, the user file, the working directory file,
then the command line.

## Things you can try
- Use ` + "`Arch=32`" + ` or ` + "`Arch=64`" + `.
- Use ` + "`PlatformFamily=windows`" + `, ` + "`linux`" + ` or ` + "`bsd`" + `.
- Rerun with ` + "`Verbose`" + ` to see which file each override came from.`,
	}

	programNotFoundIssue = &Issue{
		id: ProgramNotFoundId,
		mdMsg: `
# A required program was not found

Programs are searched for in every directory of ` + "`PATH`" + `.

## Things you can try
- Install the program with your package manager.
- Point at an existing copy with ` + "`Program-NAME=LOCATION`" + `.`,
	}

	libraryNotFoundIssue = &Issue{
		id: LibraryNotFoundId,
		mdMsg: `
# A required library was not found

Libraries are searched for in ` + "`LD_LIBRARY_PATH`" + `, the standard library
directories of your platform, and through pkg-config.

## Things you can try
- Install the library's development package.
- Point at the library with ` + "`CLibrary-NAME=LOCATION`" + ` and, if the headers live
  elsewhere, ` + "`CLibrary-NAME-Includes=LOCATION`" + `.`,
		extLinks: []HttpLink{"https://www.freedesktop.org/wiki/Software/pkg-config/"},
	}

	compilerNotFoundIssue = &Issue{
		id: CompilerNotFoundId,
		mdMsg: `
# No suitable C++ compiler was found

Each candidate compiler is asked to check a small program that uses the
requested language features.

## Things you can try
- Install a newer g++ or clang.
- Select a compiler with ` + "`CXXCompiler=PATH`" + ` and, for an unusual name,
  ` + "`CXXCompilerClass=g++`" + `.`,
	}

	issues = map[Id]*Issue{
		interactionFailedIssue.Id():     interactionFailedIssue,
		controllerMisbehavedIssue.Id():  controllerMisbehavedIssue,
		internalErrorIssue.Id():         internalErrorIssue,
		controllerStartFailedIssue.Id(): controllerStartFailedIssue,
		configInvalidIssue.Id():         configInvalidIssue,
		programNotFoundIssue.Id():       programNotFoundIssue,
		libraryNotFoundIssue.Id():       libraryNotFoundIssue,
		compilerNotFoundIssue.Id():      compilerNotFoundIssue,
	}
)

// Values returns every issue ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
