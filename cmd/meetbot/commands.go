package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccastromar/meetbot/internal/app"
	"github.com/ccastromar/meetbot/internal/chunk"
	"github.com/ccastromar/meetbot/internal/session"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetbot",
		Short:         "Chat with and summarize meeting transcripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newChunkCommand())

	return rootCmd
}

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.SetHTTPPort(port)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "HTTP port to listen on (overrides PORT)")
	return cmd
}

func newAskCommand() *cobra.Command {
	var transcriptPath string

	cmd := &cobra.Command{
		Use:   "ask --transcript FILE <message>",
		Short: "Send one message about a transcript and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(transcriptPath)
			if err != nil {
				return err
			}

			engine, err := engineCtor()
			if err != nil {
				return fmt.Errorf("initializing engine: %w", err)
			}

			message := strings.Join(args, " ")
			sess := session.New("", text)
			sess.Append(session.SenderUser, message)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			fmt.Fprintln(cmd.OutOrStdout(), engine.Process(ctx, message, sess))
			return nil
		},
	}
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Path to the transcript file")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}

func newChunkCommand() *cobra.Command {
	var (
		transcriptPath string
		size           int
		overlap        int
	)

	cmd := &cobra.Command{
		Use:   "chunk --transcript FILE",
		Short: "Show how a transcript would be split for summarization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTranscript(transcriptPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			chunks := chunk.Split(text, size, overlap)
			fmt.Fprintf(out, "%d runes, %d chunk(s)\n", len([]rune(text)), len(chunks))
			for _, c := range chunks {
				fmt.Fprintf(out, "#%d [%d:%d) %d runes\n", c.Index+1, c.Start, c.End, c.Len())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Path to the transcript file")
	cmd.Flags().IntVar(&size, "size", chunk.DefaultSize, "Maximum chunk size in runes")
	cmd.Flags().IntVar(&overlap, "overlap", chunk.DefaultOverlap, "Overlap between chunks in runes")
	_ = cmd.MarkFlagRequired("transcript")
	return cmd
}

func readTranscript(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(b), nil
}
