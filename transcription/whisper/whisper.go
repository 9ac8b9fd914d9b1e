// Package whisper transcribes audio locally with the whisper.cpp command line.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	apperrors "github.com/kbukum/shownotes/errors"
	"github.com/kbukum/shownotes/httpclient"
	"github.com/kbukum/shownotes/logger"
	"github.com/kbukum/shownotes/process"
	"github.com/kbukum/shownotes/provider"
	"github.com/kbukum/shownotes/transcript"
	"github.com/kbukum/shownotes/transcription"
	"github.com/kbukum/shownotes/util"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	// Output formats understood by the provider.
	FormatLRC  = "lrc"
	FormatJSON = "json"

	defaultBinary          = "whisper-cli"
	defaultModelsDir       = "models"
	defaultModel           = "base"
	defaultTimeout         = 30 * time.Minute
	defaultDownloadTimeout = 10 * time.Minute
	defaultMaxDownload     = 2 << 30
	stderrTail             = 2048
)

// compile-time assertions
var (
	_ transcription.Provider = (*Provider)(nil)
	_ provider.Closeable     = (*Provider)(nil)
)

// Config holds configuration for the Whisper provider.
type Config struct {
	// Binary is the whisper.cpp executable (whisper-cli, or main on older builds).
	Binary string `mapstructure:"binary"`
	// ModelsDir holds ggml-<model>.bin files.
	ModelsDir string `mapstructure:"models_dir"`
	// Format selects -olrc or -oj output and the matching normaliser.
	Format string `mapstructure:"format"`
	// Threads is passed as -t when positive.
	Threads int `mapstructure:"threads"`
	// Timeout bounds one whisper.cpp run.
	Timeout time.Duration `mapstructure:"timeout"`
	// DownloadTimeout bounds fetching URL sources.
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	// MaxDownloadBytes caps the size of URL sources.
	MaxDownloadBytes int64 `mapstructure:"max_download_size"`
}

func (c *Config) applyDefaults() {
	c.Binary = util.Coalesce(c.Binary, defaultBinary)
	c.ModelsDir = util.Coalesce(c.ModelsDir, defaultModelsDir)
	c.Format = util.Coalesce(c.Format, FormatLRC)
	c.Timeout = util.Coalesce(c.Timeout, defaultTimeout)
	c.DownloadTimeout = util.Coalesce(c.DownloadTimeout, defaultDownloadTimeout)
	c.MaxDownloadBytes = util.Coalesce(c.MaxDownloadBytes, defaultMaxDownload)
}

// Provider implements transcription.Provider by running whisper.cpp.
type Provider struct {
	cfg      Config
	runner   *process.Adapter
	download *httpclient.Client
	log      *logger.Logger
}

// New creates a Whisper provider. Whisper runs locally and needs no API key.
func New(cfg Config) (*Provider, error) {
	cfg.applyDefaults()
	if cfg.Format != FormatLRC && cfg.Format != FormatJSON {
		return nil, apperrors.Configuration(fmt.Sprintf("whisper: unsupported format %q", cfg.Format))
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName + "-download",
		Timeout: cfg.DownloadTimeout,
	})
	if err != nil {
		return nil, apperrors.Configuration("whisper: " + err.Error())
	}
	return &Provider{
		cfg: cfg,
		runner: process.NewAdapter(process.Config{
			Name:    ProviderName,
			Binary:  cfg.Binary,
			Timeout: cfg.Timeout,
		}),
		download: client,
		log:      logger.WithComponent(ProviderName),
	}, nil
}

// NewFactory returns a provider.Factory reading binary, models_dir, format,
// threads, timeout, download_timeout and max_download_size.
func NewFactory() provider.Factory[transcription.Provider] {
	return func(cfg map[string]any) (transcription.Provider, error) {
		return New(Config{
			Binary:           util.String(cfg, "binary"),
			ModelsDir:        util.String(cfg, "models_dir"),
			Format:           util.String(cfg, "format"),
			Threads:          util.Int(cfg, "threads", 0),
			Timeout:          util.Duration(cfg, "timeout", defaultTimeout),
			DownloadTimeout:  util.Duration(cfg, "download_timeout", defaultDownloadTimeout),
			MaxDownloadBytes: util.Size(cfg, "max_download_size", defaultMaxDownload),
		})
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the binary is on PATH and the models directory exists.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	if !p.runner.IsAvailable(ctx) {
		return false
	}
	info, err := os.Stat(p.cfg.ModelsDir)
	return err == nil && info.IsDir()
}

// Close releases idle download connections.
func (p *Provider) Close(ctx context.Context) error { return p.download.Close(ctx) }

// ModelPath returns the ggml model file for model.
func (p *Provider) ModelPath(model string) string {
	return filepath.Join(p.cfg.ModelsDir, "ggml-"+model+".bin")
}

// Execute transcribes the audio with whisper.cpp and normalises its output.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	model := util.Coalesce(req.Model, defaultModel)
	modelPath := p.ModelPath(model)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, apperrors.Configuration(fmt.Sprintf("whisper: model file %s not found", modelPath))
	}

	workDir, err := os.MkdirTemp("", "shownotes-whisper-*")
	if err != nil {
		return nil, apperrors.Provider(ProviderName, 0, nil).WithCause(err)
	}
	defer os.RemoveAll(workDir)

	audio := req.Audio.Source()
	switch {
	case transcription.IsRemote(audio):
		if audio, err = p.fetch(ctx, audio, workDir); err != nil {
			return nil, err
		}
	case req.Audio.IsURL():
		return nil, apperrors.Validation("whisper: only http(s) audio URLs can be downloaded, got " + audio)
	default:
		if _, err := os.Stat(audio); err != nil {
			return nil, apperrors.Validation(fmt.Sprintf("whisper: audio file: %v", err))
		}
	}

	outPrefix := filepath.Join(workDir, "transcript")
	args := []string{"-m", modelPath, "-f", audio, "-of", outPrefix}
	if p.cfg.Format == FormatJSON {
		args = append(args, "-oj")
	} else {
		args = append(args, "-olrc")
	}
	if req.Language != "" {
		args = append(args, "-l", req.Language)
	}
	if p.cfg.Threads > 0 {
		args = append(args, "-t", fmt.Sprint(p.cfg.Threads))
	}

	res, err := p.runner.Run(ctx, process.Command{Args: args})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Timeout("whisper run").WithCause(err)
		}
		return nil, apperrors.Provider(ProviderName, 0, []byte(res.StderrTail(stderrTail))).WithCause(err)
	}
	p.log.WithContext(ctx).Debug("whisper finished", logger.DurationFields("whisper.run", res.Duration))

	data, err := os.ReadFile(outPrefix + "." + p.cfg.Format)
	if err != nil {
		return nil, apperrors.EmptyResult(ProviderName, p.cfg.Format+" output").WithCause(err)
	}

	var input transcript.WhisperInput
	if p.cfg.Format == FormatJSON {
		if input, err = transcript.ParseWhisperJSON(data); err != nil {
			return nil, apperrors.Parse(ProviderName, err)
		}
	} else {
		input = transcript.ParseLRC(data)
	}

	tr := transcript.FormatWhisper(input)
	if tr.Len() == 0 {
		return nil, apperrors.EmptyResult(ProviderName, "segments")
	}
	return &transcription.Result{
		Transcript: tr,
		Model:      model,
		CostRate:   transcription.CostRate(ProviderName, model),
		Duration:   tr.End(),
	}, nil
}

// fetch downloads a URL source into dir and returns the local path.
func (p *Provider) fetch(parent context.Context, rawURL, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(parent, p.cfg.DownloadTimeout)
	defer cancel()

	stream, err := p.download.DoStream(ctx, httpclient.Request{Method: http.MethodGet, Path: rawURL})
	if err != nil {
		return "", httpclient.ToProviderError(ProviderName, err)
	}
	defer stream.Close()

	ext := ".audio"
	if u, err := url.Parse(rawURL); err == nil && path.Ext(u.Path) != "" {
		ext = path.Ext(u.Path)
	}
	dst := filepath.Join(dir, "source"+ext)
	f, err := os.Create(dst)
	if err != nil {
		return "", apperrors.Provider(ProviderName, 0, nil).WithCause(err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(stream.Body, p.cfg.MaxDownloadBytes+1))
	if err != nil {
		if parent.Err() != nil {
			return "", parent.Err()
		}
		return "", apperrors.Provider(ProviderName, 0, nil).WithCause(err)
	}
	if n > p.cfg.MaxDownloadBytes {
		return "", apperrors.Validation(fmt.Sprintf("whisper: audio at %s exceeds %d bytes", rawURL, p.cfg.MaxDownloadBytes))
	}
	return dst, nil
}
