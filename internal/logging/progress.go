package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Progress tracks a counted batch of work.
type Progress interface {
	Add(n int)
	Finish()
}

// ProgressFactory builds a Progress for a labelled batch of total items.
type ProgressFactory func(label string, total int) Progress

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewProgressFactory returns bars drawn on w when w is a terminal and
// sampled log lines otherwise.
func NewProgressFactory(w io.Writer, logger *slog.Logger) ProgressFactory {
	if IsTerminal(w) {
		return func(label string, total int) Progress {
			return &barProgress{bar: progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(label),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)}
		}
	}
	return func(label string, total int) Progress {
		return &logProgress{
			logger:  logger,
			label:   label,
			total:   total,
			sampler: NewProgressSampler(25),
		}
	}
}

// NopProgress discards progress updates.
func NopProgress(string, int) Progress { return nopProgress{} }

type nopProgress struct{}

func (nopProgress) Add(int) {}

func (nopProgress) Finish() {}

type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) Add(n int) { _ = p.bar.Add(n) }

func (p *barProgress) Finish() { _ = p.bar.Finish() }

type logProgress struct {
	logger  *slog.Logger
	label   string
	total   int
	done    int
	sampler *ProgressSampler
}

func (p *logProgress) Add(n int) {
	p.done += n
	if p.logger == nil || p.total <= 0 {
		return
	}
	percent := float64(p.done) * 100 / float64(p.total)
	if p.sampler.ShouldLog(percent, p.label) {
		p.logger.Debug("progress",
			String("label", p.label),
			Int("done", p.done),
			Int("total", p.total),
		)
	}
}

func (p *logProgress) Finish() {}
