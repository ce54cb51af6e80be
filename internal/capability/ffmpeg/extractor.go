package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/whispernotes/insights-ms-go/internal/logger"
	"github.com/whispernotes/insights-ms-go/internal/model"
	"github.com/whispernotes/insights-ms-go/internal/port"
)

// enhanceFilter cleans the audio up before speech recognition: cut rumble
// below 80Hz and hiss above 8kHz, then normalise loudness to broadcast
// levels. Extraction falls back to a plain copy when the filter graph fails.
const enhanceFilter = "highpass=f=80,lowpass=f=8000,loudnorm=I=-16:TP=-1.5:LRA=11"

type Extractor struct {
	strg       port.Storage
	ffmpegBin  string
	ffprobeBin string
}

// compile-time check that Extractor satisfies the port
var _ port.AudioExtractor = (*Extractor)(nil)

func NewExtractor(strg port.Storage, ffmpegBin, ffprobeBin string) *Extractor {
	return &Extractor{strg: strg, ffmpegBin: ffmpegBin, ffprobeBin: ffprobeBin}
}

// ExtractAudio downloads the media object, extracts its audio track as
// 16kHz mono PCM and uploads the result next to the source object. The
// returned key is always "<objectKey>.wav" so a rerun overwrites rather than
// accumulates.
func (e *Extractor) ExtractAudio(ctx context.Context, objectKey string) (string, model.MediaInfo, error) {
	workDir, err := os.MkdirTemp("", "audio-extract-")
	if err != nil {
		return "", model.MediaInfo{}, fmt.Errorf("could not create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	srcPath := filepath.Join(workDir, "source")
	if err := e.download(ctx, objectKey, srcPath); err != nil {
		return "", model.MediaInfo{}, err
	}

	info, err := e.probe(ctx, srcPath)
	if err != nil {
		return "", model.MediaInfo{}, err
	}

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := e.extract(ctx, srcPath, wavPath, true); err != nil {
		logger.Warnf(ctx, "enhanced extraction failed (%v), retrying without filters", err)
		if err := e.extract(ctx, srcPath, wavPath, false); err != nil {
			return "", model.MediaInfo{}, fmt.Errorf("ffmpeg extraction failed: %w", err)
		}
	}

	audioKey := objectKey + ".wav"
	if err := e.upload(ctx, audioKey, wavPath); err != nil {
		return "", model.MediaInfo{}, err
	}

	return audioKey, info, nil
}

func (e *Extractor) download(ctx context.Context, objectKey, destPath string) error {
	reader, err := e.strg.GetFile(ctx, objectKey)
	if err != nil {
		return fmt.Errorf("could not fetch object %q: %w", objectKey, err)
	}
	defer reader.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("could not download object %q: %w", objectKey, err)
	}
	return nil
}

func (e *Extractor) upload(ctx context.Context, audioKey, wavPath string) error {
	f, err := os.Open(wavPath)
	if err != nil {
		return fmt.Errorf("could not open extracted audio: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("could not stat extracted audio: %w", err)
	}

	if err := e.strg.SaveFile(ctx, audioKey, f, st.Size(), map[string]string{"Content-Type": "audio/wav"}); err != nil {
		return fmt.Errorf("could not upload extracted audio: %w", err)
	}
	return nil
}

// probeFormat mirrors the ffprobe -show_format JSON shape.
type probeFormat struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
}

func (e *Extractor) probe(ctx context.Context, path string) (model.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, e.ffprobeBin,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return model.MediaInfo{}, fmt.Errorf("ffprobe failed: %v (%s)", err, stderr.String())
	}

	var pf probeFormat
	if err := json.Unmarshal(out.Bytes(), &pf); err != nil {
		return model.MediaInfo{}, fmt.Errorf("could not parse ffprobe output: %w", err)
	}

	duration, _ := strconv.ParseFloat(pf.Format.Duration, 64)
	size, _ := strconv.ParseInt(pf.Format.Size, 10, 64)
	return model.MediaInfo{
		Duration:  duration,
		Format:    pf.Format.FormatName,
		SizeBytes: size,
	}, nil
}

func (e *Extractor) extract(ctx context.Context, srcPath, destPath string, enhance bool) error {
	args := []string{
		"-y",
		"-i", srcPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
	}
	if enhance {
		args = append(args, "-af", enhanceFilter)
	}
	args = append(args, destPath)

	cmd := exec.CommandContext(ctx, e.ffmpegBin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v (%s)", err, tail(stderr.String(), 400))
	}
	return nil
}

// tail keeps error messages readable; ffmpeg writes its whole banner to
// stderr even on failure.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
