package tela

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/tela/internal/presentation/graph"
	"github.com/aretw0/tela/internal/presentation/hoa"
	"github.com/aretw0/tela/internal/presentation/tui"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/aretw0/tela/pkg/ports"
)

var _ ports.Engine = (*Translator)(nil)

// Render translates req.Formula and serializes the requested phase. With a
// cache configured, responses are looked up by a digest of the normalized
// formula, the format, the phase and the configuration.
func (t *Translator) Render(ctx context.Context, req domain.Request) (*domain.Response, error) {
	cfg := t.cfg
	if req.Config != nil {
		cfg = *req.Config
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if req.Format == "" {
		req.Format = domain.FormatHOA
	}
	if req.Phase == 0 {
		req.Phase = domain.PhaseNA
	}
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	if t.cache == nil {
		return t.render(ctx, req, cfg)
	}

	f, err := parse(req.Formula)
	if err != nil {
		return nil, err
	}
	key, err := cacheKey(f.String(), req, cfg)
	if err != nil {
		return nil, err
	}
	if resp, ok := t.lookup(ctx, key); ok {
		return resp, nil
	}

	if t.locker != nil {
		unlock, err := t.locker.Lock(ctx, key, t.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", key, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				t.logger.Warn("failed to release lock", "key", key, "err", err)
			}
		}()
		// another replica may have filled the entry while we waited
		if resp, ok := t.lookup(ctx, key); ok {
			return resp, nil
		}
	}

	resp, err := t.render(ctx, req, cfg)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	if err := t.cache.Set(ctx, key, data); err != nil {
		t.logger.Warn("failed to store rendered automaton", "key", key, "err", err)
	}
	return resp, nil
}

func checkRequest(req domain.Request) error {
	known := false
	for _, f := range domain.Formats {
		known = known || f == req.Format
	}
	if !known {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, req.Format)
	}
	if req.Phase < domain.PhaseSLAA || req.Phase > domain.PhaseBoth {
		return fmt.Errorf("%w: %d", domain.ErrUnsupportedPhase, req.Phase)
	}
	return nil
}

func (t *Translator) lookup(ctx context.Context, key string) (*domain.Response, bool) {
	data, err := t.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			t.logger.Warn("cache lookup failed", "key", key, "err", err)
		}
		t.observeCache(false)
		return nil, false
	}
	var resp domain.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		t.logger.Warn("discarding corrupt cache entry", "key", key, "err", err)
		t.observeCache(false)
		return nil, false
	}
	t.observeCache(true)
	resp.Cached = true
	return &resp, true
}

func (t *Translator) observeCache(hit bool) {
	if t.metrics != nil {
		t.metrics.ObserveCache(hit)
	}
}

func cacheKey(formula string, req domain.Request, cfg domain.Config) (string, error) {
	data, err := json.Marshal(struct {
		Formula string        `json:"formula"`
		Format  domain.Format `json:"format"`
		Phase   domain.Phase  `json:"phase"`
		Config  domain.Config `json:"config"`
	}{formula, req.Format, req.Phase, cfg})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func (t *Translator) render(ctx context.Context, req domain.Request, cfg domain.Config) (*domain.Response, error) {
	var res *Result
	var err error
	if req.Phase == domain.PhaseSLAA {
		res, err = t.alternating(ctx, req.Formula, cfg)
	} else {
		res, err = t.translate(ctx, req.Formula, cfg)
	}
	if err != nil {
		return nil, err
	}
	if req.Phase&domain.PhaseSLAA != 0 && res.SLAA == nil {
		return nil, fmt.Errorf("alternating automaton of %s: %w", res.Formula, domain.ErrTooManyMarks)
	}

	if req.Format == domain.FormatSummary {
		return &domain.Response{Output: tui.Summary(res.Formula.String(), res.Stats, res.Events), Stats: res.Stats}, nil
	}

	var sb strings.Builder
	if req.Phase&domain.PhaseSLAA != 0 {
		switch req.Format {
		case domain.FormatHOA:
			sb.WriteString(hoa.SLAA(res.SLAA))
		case domain.FormatDOT:
			sb.WriteString(graph.DotSLAA(res.SLAA))
		case domain.FormatMermaid:
			sb.WriteString(graph.MermaidSLAA(res.SLAA))
		}
	}
	if req.Phase&domain.PhaseNA != 0 {
		switch req.Format {
		case domain.FormatHOA:
			sb.WriteString(hoa.NA(res.NA))
		case domain.FormatDOT:
			sb.WriteString(graph.DotNA(res.NA))
		case domain.FormatMermaid:
			sb.WriteString(graph.MermaidNA(res.NA, nil))
		}
	}
	return &domain.Response{Output: sb.String(), Stats: res.Stats}, nil
}
