package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var askCmd = &cobra.Command{
	Use:   "ask [text]",
	Short: "Ask the voice assistant and save the spoken reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		language, _ := cmd.Flags().GetString("language")
		out, _ := cmd.Flags().GetString("out")

		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck

		config, err := getConfig()
		if err != nil {
			return err
		}

		generator, err := newGenerator(cmd.Context(), config.AI, log)
		if err != nil {
			return err
		}

		reply, err := newPipeline(generator, config, log).ProcessText(cmd.Context(), strings.Join(args, " "), language)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply.LLMResponse)

		if out == "" {
			return nil
		}
		if err := os.WriteFile(out, reply.Audio, 0o644); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}
		log.Info("audio saved", zap.String("file", out), zap.Int("bytes", len(reply.Audio)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringP("language", "l", "hi-IN", "reply language code")
	askCmd.Flags().StringP("out", "o", "reply.wav", "file for the spoken reply (empty to skip)")
}
