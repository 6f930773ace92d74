package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/internal/presentation/tui"
	"github.com/aretw0/tela/pkg/domain"
)

// ExitTooManyMarks is the exit status when a translation runs out of
// acceptance marks.
const ExitTooManyMarks = 32

// TranslateOptions holds the output choices of `tela translate`.
type TranslateOptions struct {
	Formula string
	Format  domain.Format
	Phase   domain.Phase
	// Mergeable, when 1 or 2, only reports whether the construction merges
	// an until (1) or folds a G loop (2).
	Mergeable int
	// Pretty renders summaries with glamour, for terminals.
	Pretty bool
}

// RunTranslate translates opts.Formula with tr and writes the result to w.
func RunTranslate(ctx context.Context, tr *tela.Translator, opts TranslateOptions, w io.Writer) error {
	switch opts.Mergeable {
	case 0:
	case 1, 2:
		kind := domain.EventMergeableUntil
		if opts.Mergeable == 2 {
			kind = domain.EventGloballyLoop
		}
		ok, err := tr.Mergeable(ctx, opts.Formula, kind)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, ok)
		return err
	default:
		return fmt.Errorf("%w: mergeable-info must be 0, 1 or 2", domain.ErrInvalidConfig)
	}

	resp, err := tr.Render(ctx, domain.Request{
		Formula: opts.Formula,
		Format:  opts.Format,
		Phase:   opts.Phase,
	})
	if err != nil {
		return err
	}

	out := resp.Output
	if opts.Format == domain.FormatSummary && opts.Pretty {
		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		if out, err = render(out); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}

// ExitCode maps an error of a command to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrTooManyMarks):
		return ExitTooManyMarks
	}
	return 1
}
