package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drgolem/audioengine/internal/device"
	"github.com/drgolem/audioengine/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the playback engine and accept queue commands over stdin",
	Long: `Run the playback engine and accept line-oriented commands over stdin,
one per line:

  enqueue <path>
  enqueue-next <path>
  import-m3u <playlist>
  play
  pause
  skip
  previous
  skip-to <index>
  current
  tags
  status
  playlist
  changed
  quit`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("device-index", -1, "PortAudio output device index (-1 for default)")
	serveCmd.Flags().Int("frames-per-buffer", 512, "PortAudio frames per callback")
}

func runServe(cmd *cobra.Command, args []string) {
	deviceIndex, _ := cmd.Flags().GetInt("device-index")
	framesPerBuffer, _ := cmd.Flags().GetInt("frames-per-buffer")

	cfg := engine.DefaultConfig()
	cfg.Device = device.Config{DeviceIndex: deviceIndex, FramesPerBuffer: framesPerBuffer}

	eng := engine.New(cfg, slog.Default())
	if err := eng.Init(); err != nil {
		slog.Error("serve: failed to initialize engine", "error", err)
		os.Exit(1)
	}

	slog.Info("serve: engine ready, reading commands from stdin")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return
		}
		if err := dispatch(eng, line); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}

func dispatch(eng *engine.Engine, line string) error {
	fields := strings.SplitN(line, " ", 2)
	command := fields[0]
	var arg string
	if len(fields) > 1 {
		arg = strings.TrimSpace(fields[1])
	}

	switch command {
	case "play":
		return eng.Play()
	case "pause":
		return eng.Pause()
	case "enqueue":
		eng.Enqueue(arg)
	case "enqueue-next":
		eng.EnqueueNext(arg)
	case "import-m3u":
		return eng.ImportM3U(arg)
	case "skip":
		eng.Skip()
	case "previous":
		eng.Previous()
	case "skip-to":
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("skip-to: %w", err)
		}
		eng.SkipTo(idx)
	case "current":
		path, ok := eng.CurrentPlaying()
		if !ok {
			fmt.Println("null")
			return nil
		}
		fmt.Println(path)
	case "tags":
		tags, ok := eng.CurrentTag()
		if !ok {
			fmt.Println("null")
			return nil
		}
		fmt.Printf("artist=%q album=%q title=%q\n", tags.Artist, tags.Album, tags.Title)
	case "status":
		st := eng.Status()
		fmt.Printf("file=%q rate=%d played_samples=%d elapsed=%s\n", st.FileName, st.SampleRate, st.PlayedSamples, st.ElapsedTime)
	case "playlist":
		for i, entry := range eng.Playlist() {
			fmt.Printf("%d\t%s\t%+v\n", i, entry.Path, entry.Tags)
		}
	case "changed":
		fmt.Println(eng.Changed())
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}
