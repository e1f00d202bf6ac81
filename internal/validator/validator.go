package validator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"gatekeeper/internal/archive"
	"gatekeeper/internal/bag"
	"gatekeeper/internal/config"
	"gatekeeper/internal/ledger"
	"gatekeeper/internal/logging"
	"gatekeeper/internal/mediaconch"
	"gatekeeper/internal/notify"
	"gatekeeper/internal/policy"
	"gatekeeper/internal/refid"
	"gatekeeper/internal/relocate"
	"gatekeeper/internal/services"
	"gatekeeper/internal/structure"
	"gatekeeper/internal/transfer"
)

// Job describes one package validation request.
type Job struct {
	Format         structure.Format
	SourceFilename string
}

// Result is the terminal outcome of a run.
type Result struct {
	Refid    string
	Outcome  string
	Duration time.Duration
	Err      error
}

// Option overrides one of the validator's collaborators, primarily for tests.
type Option func(*Validator)

// WithStore overrides the source object store.
func WithStore(store transfer.Store) Option {
	return func(v *Validator) { v.store = store }
}

// WithBagChecker overrides the packaging-format checker.
func WithBagChecker(checker bag.Checker) Option {
	return func(v *Validator) { v.checker = checker }
}

// WithConformanceTool overrides the format conformance tool.
func WithConformanceTool(tool mediaconch.Runner) Option {
	return func(v *Validator) { v.tool = tool }
}

// WithDestination overrides the relocation destination.
func WithDestination(dest relocate.Destination) Option {
	return func(v *Validator) { v.dest = dest }
}

// WithNotifier overrides the outcome notification service.
func WithNotifier(notifier notify.Service) Option {
	return func(v *Validator) { v.notifier = notifier }
}

// WithLedger records terminal outcomes in the given ledger.
func WithLedger(store *ledger.Store) Option {
	return func(v *Validator) { v.ledger = store }
}

// Validator drives one package through every validation step.
type Validator struct {
	cfg   *config.Config
	job   Job
	refid string

	store    transfer.Store
	checker  bag.Checker
	tool     mediaconch.Runner
	dest     relocate.Destination
	notifier notify.Service
	ledger   *ledger.Store
	logger   *slog.Logger

	lock              *flock.Flock
	state             State
	relocationStarted bool
}

// New builds a validator for one job, wiring default collaborators from
// configuration for any not supplied as options.
func New(cfg *config.Config, job Job, logger *slog.Logger, opts ...Option) (*Validator, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if job.SourceFilename == "" {
		return nil, errors.New("source filename required")
	}
	if job.Format != structure.FormatAudio && job.Format != structure.FormatVideo {
		return nil, services.Wrap(services.ErrConfiguration, "", "build validator",
			"cannot process packages with format "+job.Format.String(), nil)
	}

	v := &Validator{
		cfg:    cfg,
		job:    job,
		refid:  refid.FromFilename(job.SourceFilename),
		logger: logging.NewComponentLogger(logger, "validator"),
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.store == nil {
		store, err := transfer.NewS3Store(cfg.Storage)
		if err != nil {
			return nil, err
		}
		v.store = store
	}
	if v.checker == nil {
		v.checker = bag.NewCLI(
			bag.WithCommand(cfg.BagCheck.Command, cfg.BagCheck.Args...),
			bag.WithTimeout(time.Duration(cfg.BagCheck.Timeout)*time.Second),
		)
	}
	if v.tool == nil {
		detection := mediaconch.DetectStdout
		if cfg.Tool.Detection == config.DetectionExitCode {
			detection = mediaconch.DetectExitCode
		}
		v.tool = mediaconch.NewCLI(
			mediaconch.WithBinary(cfg.Tool.Binary),
			mediaconch.WithDetection(detection),
			mediaconch.WithTimeout(time.Duration(cfg.Tool.Timeout)*time.Second),
		)
	}
	if v.dest == nil {
		if cfg.DirectoryDestination() {
			v.dest = &relocate.DirectoryDestination{Root: cfg.Destination.Directory}
		} else {
			v.dest = &relocate.ObjectDestination{Store: v.store, Bucket: cfg.Destination.Bucket}
		}
	}
	if v.notifier == nil {
		v.notifier = notify.NewService(cfg)
	}
	return v, nil
}

// Refid returns the identifier derived from the source filename.
func (v *Validator) Refid() string {
	return v.refid
}

// State returns the most recently entered state.
func (v *Validator) State() State {
	return v.state
}

// Run executes the full validation sequence. Whatever happens mid-run,
// cleanup runs, exactly one outcome notification is published, and the
// terminal state is done or failed. Steps never retry; rerunning the job is
// the retry mechanism.
func (v *Validator) Run(ctx context.Context) Result {
	started := time.Now().UTC()
	ctx = services.WithRefid(ctx, v.refid)

	runErr := v.execute(ctx)

	// Cleanup and notification must happen even when the run was cancelled.
	tail := context.WithoutCancel(ctx)
	v.cleanup(tail, runErr)
	v.notifyOutcome(tail, runErr)
	v.record(tail, started, runErr)
	v.releaseLock()

	result := Result{Refid: v.refid, Duration: time.Since(started)}
	if runErr != nil {
		v.state = StateFailed
		logging.WithContext(ctx, v.logger).Error("package validation failed",
			logging.String(logging.FieldFormat, v.job.Format.String()),
			logging.String(logging.FieldErrorKind, services.Kind(runErr)),
			logging.Error(runErr))
		result.Outcome = notify.OutcomeFailure
		result.Err = runErr
		return result
	}
	v.state = StateDone
	logging.WithContext(ctx, v.logger).Info("package validated",
		logging.String(logging.FieldFormat, v.job.Format.String()),
		logging.Duration("duration", result.Duration))
	result.Outcome = notify.OutcomeSuccess
	return result
}

func (v *Validator) execute(ctx context.Context) error {
	steps := []struct {
		state State
		fn    func(context.Context) error
	}{
		{StateIdentifying, v.identify},
		{StateDownloading, v.download},
		{StateExtracting, v.extract},
		{StateStructureChecking, v.checkBag},
		{StateAssetChecking, v.checkAssets},
		{StateFormatChecking, v.checkFormats},
		{StateRelocating, v.relocate},
	}
	for _, step := range steps {
		stepCtx := v.enterState(ctx, step.state)
		if err := step.fn(stepCtx); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) enterState(ctx context.Context, state State) context.Context {
	v.state = state
	stepCtx := services.WithState(ctx, state.String())
	logging.WithContext(stepCtx, v.logger).Debug("state entered")
	return stepCtx
}

func (v *Validator) identify(ctx context.Context) error {
	if err := refid.Validate(v.refid); err != nil {
		return err
	}
	if err := v.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrTransient, "identifying", "prepare directories", "", err)
	}

	v.lock = flock.New(filepath.Join(v.cfg.Paths.WorkDir, v.refid+".lock"))
	locked, err := v.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrTransient, "identifying", "lock working directory", "", err)
	}
	if !locked {
		return services.Wrap(services.ErrTransient, "identifying", "lock working directory",
			"another run already owns refid "+v.refid, nil)
	}
	return nil
}

func (v *Validator) download(ctx context.Context) error {
	err := v.store.Download(ctx, v.cfg.Storage.SourceBucket, v.job.SourceFilename, v.archivePath())
	if err != nil {
		return services.Wrap(services.ErrTransient, "downloading", "fetch source package",
			v.job.SourceFilename, err)
	}
	return nil
}

func (v *Validator) extract(ctx context.Context) error {
	return archive.Extract(v.archivePath(), v.cfg.Paths.WorkDir)
}

func (v *Validator) checkBag(ctx context.Context) error {
	bagPath := v.bagPath()
	if _, err := os.Stat(bagPath); err != nil {
		return services.Wrap(services.ErrStructural, "structure_checking", "locate bag",
			"bag directory "+v.refid+" missing after extraction", err)
	}
	return v.checker.Check(ctx, bagPath)
}

func (v *Validator) checkAssets(ctx context.Context) error {
	payloadDir := v.payloadDir()
	masterCount, err := structure.MasterCount(payloadDir, v.job.Format)
	if err != nil {
		return err
	}
	expected := structure.Expected(v.job.Format, v.refid, masterCount)
	actual, err := structure.Actual(payloadDir)
	if err != nil {
		return err
	}
	return structure.Compare(expected, actual)
}

func (v *Validator) checkFormats(ctx context.Context) error {
	payloadDir := v.payloadDir()
	names, err := structure.Actual(payloadDir)
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		policyPath, err := policy.Path(v.cfg.Tool.PolicyDir, name)
		if err != nil {
			return err
		}
		verdict, err := v.tool.Check(ctx, policyPath, filepath.Join(payloadDir, name))
		if err != nil {
			return services.Wrap(services.ErrTransient, "format_checking", "run conformance tool",
				"cannot check "+name, err)
		}
		if !verdict.Pass {
			return services.Wrap(services.ErrConformance, "format_checking", "check "+name,
				verdict.Diagnostic, nil)
		}
		logging.WithContext(ctx, v.logger).Debug("file conforms", logging.String("file", name))
	}
	return nil
}

func (v *Validator) relocate(ctx context.Context) error {
	v.relocationStarted = true
	return v.dest.Move(ctx, v.refid, v.payloadDir())
}

// cleanup removes working state on every terminal path. Success additionally
// deletes the source object; failure retains it for redelivery but purges any
// partial destination output, except after a destination conflict where the
// existing output belongs to an earlier run and must survive.
func (v *Validator) cleanup(ctx context.Context, runErr error) {
	cleanCtx := v.enterState(ctx, StateCleaningUp)
	logger := logging.WithContext(cleanCtx, v.logger)

	if err := os.RemoveAll(v.bagPath()); err != nil {
		logger.Warn("cannot remove bag directory", logging.Error(err))
	}
	if err := os.Remove(v.archivePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("cannot remove source archive", logging.Error(err))
	}

	if runErr == nil {
		if err := v.store.Delete(cleanCtx, v.cfg.Storage.SourceBucket, v.job.SourceFilename); err != nil {
			logger.Warn("cannot delete source object", logging.Error(err))
		}
		return
	}

	if v.relocationStarted && !errors.Is(runErr, services.ErrDestinationConflict) {
		if err := v.dest.Purge(cleanCtx, v.refid); err != nil {
			logger.Warn("cannot purge partial destination output", logging.Error(err))
		}
	}
}

func (v *Validator) notifyOutcome(ctx context.Context, runErr error) {
	notifyCtx := v.enterState(ctx, StateNotifying)
	logger := logging.WithContext(notifyCtx, v.logger)

	var err error
	if runErr == nil {
		err = v.notifier.NotifySuccess(notifyCtx, v.job.Format.String(), v.refid, v.job.SourceFilename)
	} else {
		err = v.notifier.NotifyFailure(notifyCtx, v.job.Format.String(), v.refid, v.job.SourceFilename, runErr)
	}
	if err != nil {
		logger.Warn("cannot publish outcome notification", logging.Error(err))
	}
}

func (v *Validator) record(ctx context.Context, started time.Time, runErr error) {
	if v.ledger == nil {
		return
	}
	run := ledger.Run{
		Refid:      v.refid,
		Format:     v.job.Format.String(),
		Outcome:    notify.OutcomeSuccess,
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}
	if runErr != nil {
		run.Outcome = notify.OutcomeFailure
		run.ErrorKind = services.Kind(runErr)
		run.Message = runErr.Error()
	}
	if _, err := v.ledger.Record(ctx, run); err != nil {
		logging.WithContext(ctx, v.logger).Warn("cannot record run in ledger", logging.Error(err))
	}
}

func (v *Validator) releaseLock() {
	if v.lock == nil {
		return
	}
	path := v.lock.Path()
	_ = v.lock.Unlock()
	_ = os.Remove(path)
	v.lock = nil
}

func (v *Validator) archivePath() string {
	return filepath.Join(v.cfg.Paths.WorkDir, v.job.SourceFilename)
}

func (v *Validator) bagPath() string {
	return filepath.Join(v.cfg.Paths.WorkDir, v.refid)
}

func (v *Validator) payloadDir() string {
	return filepath.Join(v.bagPath(), "data")
}
