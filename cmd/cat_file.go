package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/KostasZigo/clony/internal/objects"
	"github.com/KostasZigo/clony/utils"
	"github.com/spf13/cobra"
)

var catFileCmd = &cobra.Command{
	Use:   "cat-file (-p | -t | -s) <object>",
	Short: "Show content, type or size of a stored object",
	Long: `Read an object from .clony/objects by its full 40 character hash.

  -p  pretty-print the object content (trees are listed one entry per line)
  -t  print the object type
  -s  print the payload size in bytes`,
	SilenceUsage: true,
	Args:         exactArgs(1, "object"),
	RunE:         runCatFile,
}

var (
	catFilePretty bool
	catFileType   bool
	catFileSize   bool
)

func init() {
	rootCmd.AddCommand(catFileCmd)

	catFileCmd.Flags().BoolVarP(&catFilePretty, "pretty", "p", false, "Pretty-print object content")
	catFileCmd.Flags().BoolVarP(&catFileType, "type", "t", false, "Show object type")
	catFileCmd.Flags().BoolVarP(&catFileSize, "size", "s", false, "Show object size")
	catFileCmd.MarkFlagsMutuallyExclusive("pretty", "type", "size")
	catFileCmd.MarkFlagsOneRequired("pretty", "type", "size")
}

func runCatFile(cmd *cobra.Command, args []string) error {
	repoPath, err := findRepoRoot()
	if err != nil {
		return err
	}

	store := objects.NewObjectStore(repoPath)
	objectType, payload, err := store.ReadObject(args[0])
	if err != nil {
		return fmt.Errorf("failed to read object %s: %w", args[0], err)
	}

	out := cmd.OutOrStdout()
	switch {
	case catFileType:
		fmt.Fprintln(out, objectType)
	case catFileSize:
		fmt.Fprintln(out, len(payload))
	default:
		return prettyPrint(out, objectType, payload)
	}
	return nil
}

// prettyPrint writes blobs and commits verbatim and trees as "<mode> <type> <hash>\t<name>" lines.
func prettyPrint(out io.Writer, objectType utils.ObjectType, payload []byte) error {
	if objectType != utils.TreeObjectType {
		_, err := out.Write(payload)
		return err
	}

	tree, err := objects.ParseTree(payload)
	if err != nil {
		return err
	}
	for _, entry := range tree.Entries() {
		entryType := utils.BlobObjectType
		if entry.IsDirectory() {
			entryType = utils.TreeObjectType
		}
		mode := string(entry.Mode())
		mode = strings.Repeat("0", max(0, 6-len(mode))) + mode
		fmt.Fprintf(out, "%s %s %s\t%s\n", mode, entryType, entry.Hash(), entry.Name())
	}
	return nil
}
