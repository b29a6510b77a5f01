package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/everstacklabs/modelsync/internal/cache"
	"github.com/everstacklabs/modelsync/internal/catalog"
	"github.com/everstacklabs/modelsync/internal/config"
	"github.com/everstacklabs/modelsync/internal/copilot"
	"github.com/everstacklabs/modelsync/internal/diff"
	"github.com/everstacklabs/modelsync/internal/editor"
	"github.com/everstacklabs/modelsync/internal/httpclient"
	"github.com/everstacklabs/modelsync/internal/settings"
	"github.com/everstacklabs/modelsync/internal/validate"
)

// Exit code constants for the CLI.
const (
	ExitSuccess   = 0
	ExitError     = 1
	ExitCancelled = 2 // user declined a real diff; deliberate, not a crash
	ExitChanges   = 3 // diff mode: the settings file is out of date
)

// Pipeline runs the full flow: fetch the catalog, synthesize the block,
// merge it into the settings document, diff, back up and write.
// Strictly sequential; the only suspension point is the confirmation gate.
type Pipeline struct {
	cfg     *config.Config
	fetcher *catalog.Client
	confirm diff.ConfirmFunc
	out     io.Writer
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithConfirm injects the confirmation gate. The default reads stdin.
func WithConfirm(f diff.ConfirmFunc) Option {
	return func(p *Pipeline) { p.confirm = f }
}

// WithOutput redirects status and diff output (default stdout).
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithFetcher overrides the discovery client (tests).
func WithFetcher(c *catalog.Client) Option {
	return func(p *Pipeline) { p.fetcher = c }
}

// New wires a Pipeline from configuration.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:     cfg,
		confirm: diff.StdinConfirm(os.Stdin, os.Stdout),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if cfg.AssumeYes {
		p.confirm = diff.AlwaysApply
	}
	if p.fetcher == nil {
		p.fetcher = catalog.NewClient(catalog.StudioURL(cfg.BaseURL, cfg.StudioURL), newHTTPClient(cfg))
	}
	return p
}

func newHTTPClient(cfg *config.Config) *httpclient.Client {
	opts := []httpclient.Option{
		httpclient.WithRateLimit(cfg.RateLimit),
	}

	if timeout, err := time.ParseDuration(cfg.HTTPTimeout); err == nil {
		opts = append(opts, httpclient.WithTimeout(timeout))
	}

	if cfg.NoCache {
		opts = append(opts, httpclient.WithNoCache())
	} else {
		ttl, err := time.ParseDuration(cfg.CacheTTL)
		if err != nil {
			ttl = 10 * time.Minute
		}
		if fc, err := cache.New(cfg.CacheDir, ttl); err != nil {
			slog.Warn("failed to create cache, continuing without", "error", err)
		} else {
			opts = append(opts, httpclient.WithCache(fc))
		}
	}

	return httpclient.New(opts...)
}

// Result summarizes one sync run.
type Result struct {
	Path       string
	Decision   diff.Decision
	BackupPath string
	Models     []string
	ChangeSet  *diff.ChangeSet
}

// TargetPath resolves the settings file to operate on. Empty means no file
// was requested and the generated block goes to stdout instead.
func (p *Pipeline) TargetPath() (string, error) {
	if p.cfg.SettingsPath != "" {
		return p.cfg.SettingsPath, nil
	}
	if p.cfg.Editor != "" {
		return editor.SettingsPath(editor.Editor(p.cfg.Editor))
	}
	return "", nil
}

// Discover returns the raw model descriptors without synthesizing.
func (p *Pipeline) Discover(ctx context.Context) ([]catalog.Descriptor, error) {
	return p.fetcher.Fetch(ctx)
}

// Generate fetches the model catalog and synthesizes the config block,
// aborting on validation errors.
func (p *Pipeline) Generate(ctx context.Context) (*copilot.Block, error) {
	descriptors, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	block := copilot.Synthesize(descriptors, p.cfg.BaseURL)
	slog.Info("config synthesized", "discovered", len(descriptors), "included", block.Len())

	result := validate.ValidateBlock(block)
	for _, w := range result.Warnings() {
		slog.Warn("validation warning", "issue", w.String())
	}
	if result.HasErrors() {
		return nil, fmt.Errorf("generated config failed validation:\n%s", validate.FormatResult(result))
	}

	return block, nil
}

// Print writes the generated block to the output as pretty JSON, wrapped in
// its settings key so it can be pasted into settings.json directly.
func (p *Pipeline) Print(ctx context.Context) error {
	block, err := p.Generate(ctx)
	if err != nil {
		return err
	}

	doc := settings.Empty()
	doc.Set(p.cfg.ManagedKey, block)
	rendered, err := doc.Render(settings.DefaultIndent)
	if err != nil {
		return err
	}

	fmt.Fprint(p.out, rendered)
	return nil
}

// Sync runs the full pipeline against the settings file at path.
func (p *Pipeline) Sync(ctx context.Context, path string) (*Result, error) {
	rendered, raw, block, err := p.prepare(ctx, path)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: path, Models: block.Names()}

	cs, err := diff.Compute(raw, rendered)
	if err != nil {
		return nil, err
	}
	result.ChangeSet = cs

	if !cs.HasChanges() {
		result.Decision = diff.Unchanged
		slog.Info("settings already up to date", "path", path, "models", block.Len())
		return result, nil
	}

	ok, err := p.confirm(path, cs)
	if err != nil {
		return nil, err
	}
	if !ok {
		result.Decision = diff.Cancel
		return result, nil
	}

	backupPath, err := settings.Commit(path, []byte(rendered))
	if err != nil {
		return nil, err
	}
	result.Decision = diff.Apply
	result.BackupPath = backupPath

	if backupPath != "" {
		slog.Info("backup created", "path", backupPath)
	}
	slog.Info("settings updated", "path", path, "models", block.Len())
	return result, nil
}

// Preview computes the changeset without confirming or writing.
func (p *Pipeline) Preview(ctx context.Context, path string) (*Result, error) {
	rendered, raw, block, err := p.prepare(ctx, path)
	if err != nil {
		return nil, err
	}

	cs, err := diff.Compute(raw, rendered)
	if err != nil {
		return nil, err
	}

	result := &Result{Path: path, Models: block.Names(), ChangeSet: cs}
	if cs.HasChanges() {
		result.Decision = diff.Apply
		fmt.Fprint(p.out, diff.Render(path, cs))
	} else {
		result.Decision = diff.Unchanged
		fmt.Fprintln(p.out, "No changes detected.")
	}
	return result, nil
}

// ValidateFile checks the managed block already present in a settings file.
// Unlike the sync path, a malformed document is an error here: there is
// nothing to validate in a file that cannot be read.
func ValidateFile(path, managedKey string) (*validate.Result, error) {
	raw, existed, err := settings.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, fmt.Errorf("settings file %s does not exist", path)
	}

	doc, err := settings.Parse(raw)
	if err != nil {
		return nil, err
	}

	v, ok := doc.Get(managedKey)
	if !ok {
		return nil, fmt.Errorf("%s has no %q block", path, managedKey)
	}

	block, err := copilot.BlockFromValue(v)
	if err != nil {
		return nil, err
	}
	return validate.ValidateBlock(block), nil
}

// prepare generates the block, loads the existing document, merges, and
// renders the would-be file content.
func (p *Pipeline) prepare(ctx context.Context, path string) (rendered, raw string, block *copilot.Block, err error) {
	block, err = p.Generate(ctx)
	if err != nil {
		return "", "", nil, err
	}

	raw, existed, err := settings.ReadFile(path)
	if err != nil {
		return "", "", nil, err
	}

	doc := settings.Empty()
	if existed {
		parsed, perr := settings.Parse(raw)
		if perr != nil {
			// Falling back to an empty document means every existing key is
			// gone from the rendered output. The diff will show the removals,
			// but spell the consequence out before the user confirms.
			slog.Warn("existing settings are not valid JSONC; applying the change will REPLACE the whole file",
				"path", path, "error", perr)
		} else {
			doc = parsed
		}
	}

	doc.Set(p.cfg.ManagedKey, block)

	indent := settings.InferIndent(raw)
	rendered, err = doc.Render(indent)
	if err != nil {
		return "", "", nil, err
	}
	return rendered, raw, block, nil
}
