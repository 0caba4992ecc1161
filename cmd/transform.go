package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	wav "github.com/youpy/go-wav"

	"github.com/drgolem/audioengine/pkg/decoders"
	"github.com/drgolem/audioengine/pkg/resample"
	"github.com/drgolem/audioengine/pkg/types"
)

var transformCmd = &cobra.Command{
	Use:   "transform <input_file>",
	Short: "Transform an audio file's sample rate and write it out as WAV",
	Long: `Decode an MP3, WAV, FLAC, or Ogg Opus file through the engine's own
decoder adapters and resampler, and write the result as 16-bit PCM WAV.

Examples:
  audioengine transform input.mp3 --new-samplerate 48000 --out output.wav
  audioengine transform input.opus --new-samplerate 44100 --mono --out output.wav`,
	Args: cobra.ExactArgs(1),
	Run:  runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)

	transformCmd.Flags().Int("new-samplerate", 48000, "Target sample rate in Hz")
	transformCmd.Flags().String("out", "out_transformed.wav", "Output WAV file path")
	transformCmd.Flags().Bool("mono", false, "Convert output to mono signal (average channels)")
}

func runTransform(cmd *cobra.Command, args []string) {
	inFileName := args[0]

	if _, err := os.Stat(inFileName); os.IsNotExist(err) {
		slog.Error("input file not found", "path", inFileName)
		os.Exit(1)
	}

	newSampleRate, err := cmd.Flags().GetInt("new-samplerate")
	if err != nil {
		slog.Error("failed to get new-samplerate flag", "error", err)
		os.Exit(1)
	}
	outFileName, err := cmd.Flags().GetString("out")
	if err != nil {
		slog.Error("failed to get out flag", "error", err)
		os.Exit(1)
	}
	convertToMono, err := cmd.Flags().GetBool("mono")
	if err != nil {
		slog.Error("failed to get mono flag", "error", err)
		os.Exit(1)
	}
	if newSampleRate <= 0 || newSampleRate > 384000 {
		slog.Error("invalid sample rate", "rate", newSampleRate, "valid_range", "1-384000")
		os.Exit(1)
	}

	decoder, err := decoders.Open(inFileName)
	if err != nil {
		slog.Error("failed to open decoder", "error", err)
		os.Exit(1)
	}
	defer decoder.Close()

	slog.Info("audio transformation starting",
		"input_file", inFileName,
		"input_sample_rate", decoder.SampleRate(),
		"output_sample_rate", newSampleRate,
		"output_mono", convertToMono,
		"output_file", outFileName)

	samples, err := decodeAll(decoder, newSampleRate)
	if err != nil {
		slog.Error("failed to decode/resample audio", "error", err)
		os.Exit(1)
	}

	outChannels := 2
	if convertToMono {
		samples = toMono(samples)
		outChannels = 1
	}

	if err := writeWAV(outFileName, samples, uint16(outChannels), uint32(newSampleRate)); err != nil {
		slog.Error("failed to write WAV file", "error", err)
		os.Exit(1)
	}

	slog.Info("transformation complete",
		"output_frames", len(samples)/outChannels,
		"output_file", outFileName)
}

// decodeAll drains decoder through a resampler to destRate and returns the
// full interleaved stereo float32 result.
func decodeAll(decoder types.Decoder, destRate int) ([]float32, error) {
	rs, err := resample.New(decoder.SampleRate(), destRate)
	if err != nil {
		return nil, fmt.Errorf("building resampler: %w", err)
	}

	var out []float32
	for {
		chunk, err := decoder.Decode()
		if len(chunk) > 0 {
			resampled, rsErr := rs.Process(chunk)
			if rsErr != nil {
				return nil, rsErr
			}
			out = append(out, resampled...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
	}

	tail, err := rs.Close()
	if err != nil {
		return nil, err
	}
	out = append(out, tail...)
	return out, nil
}

// toMono averages each stereo pair into a single channel.
func toMono(stereo []float32) []float32 {
	mono := make([]float32, len(stereo)/2)
	for i := range mono {
		mono[i] = (stereo[i*2] + stereo[i*2+1]) / 2
	}
	return mono
}

func writeWAV(fileName string, samples []float32, channels uint16, sampleRate uint32) error {
	fOut, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer fOut.Close()

	numSamples := uint32(len(samples) / int(channels))
	wavWriter := wav.NewWriter(fOut, numSamples, channels, sampleRate, 16)

	raw := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(clampFloat(s) * 32767)
		raw[i*2] = byte(v)
		raw[i*2+1] = byte(v >> 8)
	}

	if _, err := wavWriter.Write(raw); err != nil {
		return fmt.Errorf("writing WAV data: %w", err)
	}
	return nil
}

func clampFloat(s float32) float32 {
	if s > 1.0 {
		return 1.0
	}
	if s < -1.0 {
		return -1.0
	}
	return s
}
