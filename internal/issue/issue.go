// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PythonNotFoundId Id = iota + 1
	PythonTooOldId
	ManifestNotFoundId
	VenvActivateMissingId
	TaskfileNotFoundId
	TaskfileParseErrorId
	TaskNotFoundId
	TaskCycleId
	ContainerEngineNotFoundId
	LowDiskSpaceId
	SettingsInvalidId
	ModelNotFoundId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to look up the issue
	mdMsg    MarkdownMsg // Markdown text that glamour renders
	docLinks []HttpLink  // documentation links shown under "See also"
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	pythonNotFoundIssue = &Issue{
		id: PythonNotFoundId,
		mdMsg: `
# Python interpreter not found!

ragkit needs a Python interpreter to bootstrap the assistant workspace,
but none was found on your PATH.

## Things you can try:
- Install Python 3.8 or newer:
  - Linux: ` + "`sudo apt install python3`" + ` or ` + "`sudo dnf install python3`" + `
  - macOS: ` + "`brew install python`" + `
  - Windows: https://www.python.org/downloads/

- Point ragkit at a specific interpreter:
~~~cue
python: "/usr/local/bin/python3.11"
~~~`,
	}

	pythonTooOldIssue = &Issue{
		id: PythonTooOldId,
		mdMsg: `
# Python version too old!

The detected interpreter is older than the minimum the assistant supports.

## Things you can try:
- Install a newer Python (3.8+) alongside the system one
- Point ragkit at it in your config:
~~~cue
python: "python3.11"
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Dependency manifest not found!

The installer needs a requirements.txt in the project root to know which
packages to install into the virtual environment.

## Things you can try:
- Run ragkit from the project root (the directory with requirements.txt)
- Create the manifest:
~~~
$ touch requirements.txt
~~~
- Or point ragkit at a different manifest in your config:
~~~cue
manifest: "deps/requirements.txt"
~~~`,
	}

	venvActivateMissingIssue = &Issue{
		id: VenvActivateMissingId,
		mdMsg: `
# Virtual environment is broken!

The environment directory exists but its activation entry point is missing,
which means the venv was only partially created.

## Things you can try:
- Delete the environment and re-run the installer:
~~~
$ rm -rf venv
$ ragkit install
~~~
- Check that your Python installation ships the venv module:
~~~
$ python3 -m venv --help
~~~`,
	}

	taskfileNotFoundIssue = &Issue{
		id: TaskfileNotFoundId,
		mdMsg: `
# No task file found!

We searched for a ragkit.cue task catalog but couldn't find one.

## Search locations (in order of precedence):
1. Current directory
2. The project root configured in your config file

## Things you can try:
- Create a starter task file:
~~~
$ ragkit init
~~~

- Or run from the project directory:
~~~
$ cd /path/to/your/project
$ ragkit task
~~~`,
	}

	taskfileParseErrorIssue = &Issue{
		id: TaskfileParseErrorId,
		mdMsg: `
# Failed to parse task file!

Your ragkit.cue contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Missing required fields (name, script)

## Things you can try:
- Check the error message above for the specific line/column
- Regenerate a known-good starter file:
~~~
$ ragkit init --force
~~~

## Example of a valid task:
~~~cue
tasks: [
  {
    name: "test"
    description: "Run the smoke tests"
    script: "python test_rag.py --component all"
  }
]
~~~`,
	}

	taskNotFoundIssue = &Issue{
		id: TaskNotFoundId,
		mdMsg: `
# Task not found!

The task you specified is not defined in the task file.

## Things you can try:
- List all available tasks:
~~~
$ ragkit task
~~~

- Check for typos in the task name
- Verify ragkit.cue contains your task definition`,
	}

	taskCycleIssue = &Issue{
		id: TaskCycleId,
		mdMsg: `
# Task dependency cycle detected!

Your task prerequisites form a cycle, which would cause infinite execution.

## Example of a cycle:
~~~cue
tasks: [
  {name: "a", script: "true", deps: ["b"]},
  {name: "b", script: "true", deps: ["a"]},  // Cycle: a -> b -> a
]
~~~

## Things you can try:
- Review the deps fields in your ragkit.cue
- Use a linear prerequisite chain instead`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Image operations need a container engine, but none is available.

## Supported container engines:
- **Docker**
- **Podman**

## Things you can try:
- Install Docker: https://docs.docker.com/get-docker/
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `

- Configure your preferred engine:
~~~cue
container_engine: "docker"  // or "podman"
~~~`,
	}

	lowDiskSpaceIssue = &Issue{
		id: LowDiskSpaceId,
		mdMsg: `
# Low disk space!

Less than 10 GB of free space is available. Model files alone can take
several gigabytes, and document indexing needs headroom on top.

## Things you can try:
- Free up disk space
- Clean old logs and backups:
~~~
$ ragkit workspace clean-logs
~~~
- Move the models directory to a bigger volume and point the config at it`,
	}

	settingsInvalidIssue = &Issue{
		id: SettingsInvalidId,
		mdMsg: `
# Settings file is invalid!

The .env settings file could not be parsed.

## Expected format:
~~~
HUGGINGFACE_TOKEN=
LOG_LEVEL=INFO
GRADIO_SERVER_PORT=7860
~~~

## Things you can try:
- Fix the malformed line reported above
- Or delete .env and re-run the installer to regenerate the defaults`,
	}

	modelNotFoundIssue = &Issue{
		id: ModelNotFoundId,
		mdMsg: `
# Model file not found!

No quantized model file (.gguf) is present in the models directory.

## Things you can try:
- Fetch the configured model:
~~~
$ ragkit model fetch
~~~
- For gated repositories, set your token first:
~~~
$ export HUGGINGFACE_TOKEN='your_token_here'
~~~`,
	}

	issues = map[Id]*Issue{
		pythonNotFoundIssue.Id():          pythonNotFoundIssue,
		pythonTooOldIssue.Id():            pythonTooOldIssue,
		manifestNotFoundIssue.Id():        manifestNotFoundIssue,
		venvActivateMissingIssue.Id():     venvActivateMissingIssue,
		taskfileNotFoundIssue.Id():        taskfileNotFoundIssue,
		taskfileParseErrorIssue.Id():      taskfileParseErrorIssue,
		taskNotFoundIssue.Id():            taskNotFoundIssue,
		taskCycleIssue.Id():               taskCycleIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		lowDiskSpaceIssue.Id():            lowDiskSpaceIssue,
		settingsInvalidIssue.Id():         settingsInvalidIssue,
		modelNotFoundIssue.Id():           modelNotFoundIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
