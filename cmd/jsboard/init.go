package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/jsboard/internal/config"
)

const defaultInitPath = "jsboard.yaml"

type initOptions struct {
	output      string
	force       bool
	minimal     bool
	interactive bool
	project     string
	strictness  string
}

func initCmd() *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a jsboard.yaml for this project",
		Long: `Write a commented jsboard configuration file.

The file lists the analysis scope, the thresholds handed to the linter and the
tool commands. Presets pick sensible patterns for common project layouts.

Examples:
  jsboard init
  jsboard init --project react --strictness strict
  jsboard init --minimal -o config/jsboard.yaml
  jsboard init -i`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", defaultInitPath, "Path of the file to write")
	f.BoolVar(&opts.force, "force", false, "Replace an existing file")
	f.BoolVar(&opts.minimal, "minimal", false, "Only write scope and thresholds")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Choose presets with prompts")
	f.StringVar(&opts.project, "project", string(config.ProjectTypeGeneric), "Project preset: generic, react, vue, node")
	f.StringVar(&opts.strictness, "strictness", string(config.StrictnessStandard), "Threshold preset: relaxed, standard, strict")
	return cmd
}

func (o *initOptions) run(out io.Writer) error {
	project, ok := config.LookupProject(config.ProjectType(o.project))
	if !ok {
		return fmt.Errorf("unknown project preset %q", o.project)
	}
	strict, ok := config.LookupStrictness(config.Strictness(o.strictness))
	if !ok {
		return fmt.Errorf("unknown strictness preset %q", o.strictness)
	}
	path := o.output

	if o.interactive {
		var err error
		if project, strict, path, err = promptPresets(out, path); err != nil {
			return err
		}
	}

	content := config.GetFullConfigTemplate(project.Type, strict.Level)
	if o.minimal {
		content = config.GetMinimalConfigTemplate()
	}
	if err := writeConfigFile(path, content, o.force); err != nil {
		return err
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	fmt.Fprintf(out, "Created %s (%s, %s)\n", path, project.Label, strict.Summary())
	fmt.Fprintln(out, "Next: 'jsboard analyze' for a one-off report, 'jsboard serve' to keep it live.")
	return nil
}

func writeConfigFile(path, content string, force bool) error {
	if dir := filepath.Dir(path); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s already exists, use --force to replace it", path)
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func promptPresets(out io.Writer, defaultPath string) (config.ProjectPreset, config.StrictnessPreset, string, error) {
	fmt.Fprintln(out, "jsboard setup")

	projects := config.ProjectPresets()
	i, _, err := (&promptui.Select{
		Label: "Project type",
		Items: projects,
		Templates: &promptui.SelectTemplates{
			Active:   "> {{ .Label | cyan }}",
			Inactive: "  {{ .Label }}",
			Selected: "Project: {{ .Label | green }}",
		},
	}).Run()
	if err != nil {
		return config.ProjectPreset{}, config.StrictnessPreset{}, "", fmt.Errorf("project selection: %w", err)
	}

	levels := config.StrictnessPresets()
	j, _, err := (&promptui.Select{
		Label: "Thresholds",
		Items: levels,
		Templates: &promptui.SelectTemplates{
			Active:   "> {{ .Label | cyan }} {{ .Summary | faint }}",
			Inactive: "  {{ .Label }} {{ .Summary | faint }}",
			Selected: "Thresholds: {{ .Label | green }}",
		},
	}).Run()
	if err != nil {
		return config.ProjectPreset{}, config.StrictnessPreset{}, "", fmt.Errorf("threshold selection: %w", err)
	}

	path, err := (&promptui.Prompt{Label: "Write to", Default: defaultPath, AllowEdit: true}).Run()
	if err != nil {
		return config.ProjectPreset{}, config.StrictnessPreset{}, "", fmt.Errorf("output path: %w", err)
	}
	if path == "" {
		path = defaultPath
	}
	return projects[i], levels[j], path, nil
}
