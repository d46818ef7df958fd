package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"sportscast/internal/domain"
	"sportscast/internal/infra"
)

// Target frame geometry for the assembled vertical video. Inputs are
// scaled to fill and center-cropped so mixed aspect ratios come out
// uniform.
const (
	TargetWidth  = 1080
	TargetHeight = 1920
)

// Encoder performs the local, deterministic video operations the pipeline
// needs. Implementations are synchronous; callers run them off the hot
// path.
type Encoder interface {
	// Trim cuts input to the window without re-encoding.
	Trim(ctx context.Context, input, output string, window domain.TrimWindow) error
	// Concat normalizes every input to the target geometry and joins them
	// in the given order, re-encoding video and audio together.
	Concat(ctx context.Context, inputs []string, output string) error
}

// FFmpeg shells out to the ffmpeg binary.
type FFmpeg struct {
	bin    string
	logger infra.Logger
}

func NewFFmpeg(bin string, logger infra.Logger) *FFmpeg {
	if strings.TrimSpace(bin) == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, logger: logger}
}

func (f *FFmpeg) Trim(ctx context.Context, input, output string, window domain.TrimWindow) error {
	if window.End <= window.Start {
		return fmt.Errorf("invalid trim window [%f, %f]", window.Start, window.End)
	}
	return f.run(ctx, trimArgs(input, output, window))
}

func (f *FFmpeg) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.New("no inputs to concatenate")
	}
	return f.run(ctx, concatArgs(inputs, output))
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, f.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.logger.Debug().Str("bin", f.bin).Strs("args", args).Msg("media: running ffmpeg")
	if err := cmd.Run(); err != nil {
		detail := lastLines(stderr.String(), 5)
		if detail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, detail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

// trimArgs seeks before the input and stream-copies, which is fast and
// lossless for cutting.
func trimArgs(input, output string, window domain.TrimWindow) []string {
	return []string{
		"-y",
		"-ss", formatSeconds(window.Start),
		"-to", formatSeconds(window.End),
		"-i", input,
		"-c", "copy",
		output,
	}
}

// concatArgs builds one filter graph that scales each input to fill the
// target frame, center-crops, then concatenates all video and audio
// streams in order.
func concatArgs(inputs []string, output string) []string {
	args := []string{"-y"}
	for _, in := range inputs {
		args = append(args, "-i", in)
	}

	var filter strings.Builder
	for i := range inputs {
		fmt.Fprintf(&filter,
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1[v%d];",
			i, TargetWidth, TargetHeight, TargetWidth, TargetHeight, i,
		)
	}
	for i := range inputs {
		fmt.Fprintf(&filter, "[v%d][%d:a]", i, i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=1[outv][outa]", len(inputs))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[outv]",
		"-map", "[outa]",
		"-c:v", "libx264",
		"-c:a", "aac",
		output,
	)
	return args
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var _ Encoder = (*FFmpeg)(nil)
