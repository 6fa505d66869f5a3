package cmd

import (
	"fmt"

	"github.com/KostasZigo/clony/internal/constants"
	"github.com/KostasZigo/clony/internal/repository"
	"github.com/KostasZigo/clony/utils"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a new Clony repository",
	Long: `The 'init' command sets up a new Clony repository in the current or given directory.
It creates a .clony directory with the object store, references and a default config.toml.
If a repository already exists, the command will not overwrite existing data.`,
	SilenceUsage: true,
	Args:         maximumArgs(1),
	RunE:         runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// runInit executes repository initialization at specified or current directory.
func runInit(cmd *cobra.Command, args []string) error {
	dirPath := "."
	if len(args) > 0 {
		dirPath = args[0]
	}

	if err := repository.InitRepository(dirPath); err != nil {
		return fmt.Errorf("failed to initialize repository - %w", err)
	}

	cmd.Printf("Initialized empty Clony repository in %s\n", utils.BuildDirPath(dirPath, constants.Clony))
	return nil
}
