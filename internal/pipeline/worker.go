package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/tenderbrief/internal/parser"
	"github.com/dgallion1/tenderbrief/internal/summarizer"
)

// Worker processes a single file job.
type Worker struct {
	summarizer Summarizer
	parserOpts parser.Options
	log        *slog.Logger
}

func NewWorker(s Summarizer, opts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		summarizer: s,
		parserOpts: opts,
		log:        log,
	}
}

// Process parses the uploaded file and summarizes its text.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "mode", job.Mode)

	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parserOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.Fail("parsing", err)
		return
	}

	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.Fail("parsing", fmt.Errorf("parse: %w", err))
		return
	}

	text := doc.Text()
	job.SetParsed(doc.Title, doc.Pages(), ContentHashHex([]byte(text)))
	log.Info("parsed document", "sections", len(doc.Sections), "pages", doc.Pages(), "text_len", len(text))

	if text == "" {
		job.Fail("parsing", errors.New("no extractable text"))
		return
	}

	job.SetStatus(StatusSummarizing, "summarizing")
	result, err := w.summarizer.Summarize(ctx, summarizer.Request{Text: text, Mode: job.Mode})
	if err != nil {
		log.Error("summarize failed", "error", err)
		job.Fail("summarizing", err)
		return
	}

	job.Complete(result)
	log.Info("job complete", "confidence", result.ConfidenceEstimate, "relevance_points", len(result.RelevanceToOfficials))
}
