package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "audioengine",
	Short: "Embedded audio-playback engine core",
	Long: `audioengine drives the default system audio output from an ordered
queue of local MP3, WAV, FLAC, and Ogg Opus files, built around a
lock-free SPSC ring buffer between a decode thread and the device thread.

Commands:
  serve:     run the engine and accept queue commands over stdin
  transform: decode and resample a single file to WAV, for debugging adapters`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
