// SPDX-License-Identifier: MPL-2.0

package taskfile

import "fmt"

// GenerateStarter returns the taskfile written by "ragkit init". The
// tasks mirror the day-to-day workflow of a Python project: install,
// run, test, lint, container lifecycle, backup and restore, log
// cleanup, and disk inspection.
func GenerateStarter(imageName string, port int) string {
	return `// ragkit task table. Run tasks with "ragkit task <name>".

tasks: [
	{
		name:        "install"
		description: "Create the virtual environment and install dependencies"
		script: """
			python3 -m venv venv
			./venv/bin/pip install --upgrade pip
			./venv/bin/pip install -r requirements.txt
			"""
	},
	{
		name:        "run"
		description: "Start the web application"
		deps: ["install"]
		script: "./venv/bin/python app.py"
	},
	{
		name:        "run-cli"
		description: "Start the interactive command-line interface"
		deps: ["install"]
		script: "./venv/bin/python cli.py"
	},
	{
		name:        "test"
		description: "Run the full test suite"
		deps: ["install"]
		script: "./venv/bin/python -m pytest tests/ -v"
	},
	{
		name:        "test-quick"
		description: "Run the test suite without slow integration tests"
		deps: ["install"]
		script: "./venv/bin/python -m pytest tests/ -v -m 'not integration'"
	},
	{
		name:        "lint"
		description: "Check code style"
		deps: ["install"]
		script: "./venv/bin/ruff check ."
	},
	{
		name:        "format"
		description: "Format the code base"
		deps: ["install"]
		script: "./venv/bin/ruff format ."
	},
	{
		name:        "clean"
		description: "Remove caches and compiled files"
		runtime:     "virtual"
		script: """
			rm -rf .pytest_cache
			rm -rf __pycache__
			find . -name '*.pyc' -delete
			"""
	},
	{
		name:        "docker-build"
		description: "Build the container image"
		script: "ragkit image build"
	},
	{
		name:        "docker-run"
		description: "Start the containerized application"
		deps: ["docker-build"]
		script: "ragkit image up"
	},
	{
		name:        "docker-stop"
		description: "Stop the containerized application"
		script: "ragkit image down"
	},
	{
		name:        "docker-logs"
		description: "Tail container logs"
		script: "ragkit image logs"
	},
	{
		name:        "backup"
		description: "Archive the vector store and processed data"
		script: "ragkit workspace backup"
	},
	{
		name:        "restore"
		description: "Restore the newest backup archive"
		script: "ragkit workspace restore \"$(ls -t backups/*.tar.gz | head -1)\""
	},
	{
		name:        "clean-logs"
		description: "Delete log files older than the retention period"
		script: "ragkit workspace clean-logs"
	},
	{
		name:        "disk"
		description: "Show directory sizes and free disk space"
		script: "ragkit workspace info"
	},
]
` + starterFooter(imageName, port)
}

// starterFooter documents the values the starter assumes so users can
// spot drift from their config at a glance.
func starterFooter(imageName string, port int) string {
	if imageName == "" {
		return ""
	}
	return fmt.Sprintf("\n// Container tasks build and run %q on port %d; adjust config.cue to change either.\n",
		imageName, port)
}
