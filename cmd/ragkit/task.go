// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ragkit/internal/taskfile"
)

var (
	taskRuntime string
	taskList    bool

	// taskCmd lists and runs project tasks.
	taskCmd = &cobra.Command{
		Use:   "task [name] [-- args...]",
		Short: "Run a project task",
		Long: `Run a project task defined in the taskfile.

Without arguments, lists the available tasks. With a task name, runs
that task after its prerequisites. Arguments after '--' are passed to
the requested task only, never to prerequisites.

The exit status of a failing task becomes ragkit's exit status;
prerequisites that fail stop the chain.`,
		RunE: runTask,
	}
)

func init() {
	taskCmd.Flags().StringVar(&taskRuntime, "runtime", "", "override runtime for tasks without one (native, virtual)")
	taskCmd.Flags().BoolVarP(&taskList, "list", "l", false, "list available tasks")
}

func runTask(cmd *cobra.Command, args []string) error {
	tf, err := taskfile.Load(projectRoot)
	if err != nil {
		renderIssue(taskLoadIssueId(err))
		return err
	}

	if taskList || len(args) == 0 {
		return listTasks(tf)
	}

	name := args[0]
	taskArgs := args[1:]

	runtime := appConfig.DefaultRuntime.String()
	if taskRuntime != "" {
		runtime = taskRuntime
	}

	d := &taskfile.Dispatcher{
		DefaultRuntime: runtime,
		Logger:         logger,
		Stdin:          os.Stdin,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
	}

	code, err := d.Run(cmd.Context(), tf, name, taskArgs)
	if err != nil {
		if id, ok := taskRunIssueId(err); ok {
			renderIssue(id)
		}
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func listTasks(tf *taskfile.Taskfile) error {
	if len(tf.Tasks) == 0 {
		fmt.Println(SubtitleStyle.Render("No tasks defined. Run 'ragkit init' to create a starter taskfile."))
		return nil
	}

	fmt.Println(TitleStyle.Render("Available tasks:"))
	for _, t := range tf.Tasks {
		line := "  " + CmdStyle.Render(t.Name)
		if t.Description != "" {
			line += "  " + SubtitleStyle.Render(t.Description)
		}
		fmt.Println(line)
	}
	return nil
}
