package main

import (
	"fmt"

	"github.com/hsaccess/hsapatcher/patcher"
	"github.com/spf13/cobra"
)

func createSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the patch channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, src := range patcher.Sources() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", src.Name, src.URL)
			}
			return nil
		},
	}
}

func createLocateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "locate [PATH]",
		Short: "Find or check the Hearthstone installation directory",
		Long: `Without PATH, locate looks for the installation through the HEARTHSTONE_HOME
environment variable and then the default install location. With PATH, it
checks that PATH is an installation directory the patch can be applied to.`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeLocate,
	}
}

func executeLocate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		target, err := patcher.NewTarget(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), target.Root())
		return nil
	}

	dir, ok := patcher.NewLocator().Find()
	if !ok {
		return fmt.Errorf("%w; pass the directory explicitly or set %s",
			&patcher.InvalidTargetError{}, patcher.HomeEnv)
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}

func (a *app) createPatchCommand() *cobra.Command {
	var opts patchOptions

	patchCmd := &cobra.Command{
		Use:   "patch [flags]",
		Short: "Download the patch and apply it to the installation",
		Long: `Patch downloads the archive of the selected channel and copies its patch/
entries over the Hearthstone installation. Files the patch does not contain
are left alone. If patching fails halfway, run it again to repair the
installation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPatch(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	patchCmd.Flags().StringVar(&opts.Dir, "dir", "",
		"Hearthstone installation directory (default: discovered)")
	patchCmd.Flags().StringVar(&opts.Channel, "channel", "",
		"Patch channel name, see 'sources' (default from HSAPATCHER_CHANNEL)")
	patchCmd.Flags().StringVar(&opts.URL, "url", "",
		"Download the archive from this URL instead of a channel (http, https or s3)")
	patchCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false,
		"Download the archive and list the files it would patch without writing")
	patchCmd.Flags().BoolVar(&opts.NoProgress, "no-progress", false,
		"Do not draw a progress bar")
	return patchCmd
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hsapatcher v%s\n", version)
		},
	}
}
