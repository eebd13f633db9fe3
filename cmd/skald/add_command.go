package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"skald/internal/config"
	"skald/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var timelinePath string
	var title string

	cmd := &cobra.Command{
		Use:   "add <transcript.srt>",
		Short: "Queue a transcript for segmentation and alignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srtPath, err := resolveInputFile(args[0], ".srt")
			if err != nil {
				return err
			}
			tlPath, err := resolveInputFile(timelinePath, ".json")
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				title = inferTitle(srtPath)
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				item, err := store.NewDocument(cmd.Context(), title, srtPath, tlPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued document #%d (%s)\n", item.ID, item.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&timelinePath, "timeline", "t", "", "Timeline JSON extracted from the source novel (required)")
	cmd.Flags().StringVar(&title, "title", "", "Document title (defaults to the transcript filename)")
	_ = cmd.MarkFlagRequired("timeline")
	return cmd
}

func resolveInputFile(path, wantExt string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path must not be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file does not exist: %s", abs)
		}
		return "", fmt.Errorf("inspect file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}
	if ext := strings.ToLower(filepath.Ext(abs)); ext != wantExt {
		return "", fmt.Errorf("unsupported file extension %q, want %s", ext, wantExt)
	}
	return abs, nil
}

// inferTitle derives a display title from the transcript filename.
func inferTitle(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	return cases.Title(language.Und, cases.NoLower).String(base)
}
