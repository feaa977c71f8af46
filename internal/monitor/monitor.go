package monitor

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"log/slog"

	"lapse/internal/config"
	"lapse/internal/deps"
	"lapse/internal/history"
	"lapse/internal/logging"
	"lapse/internal/notifications"
	"lapse/internal/report"
	"lapse/internal/services"
	"lapse/internal/services/camera"
	"lapse/internal/services/connect"
	"lapse/internal/services/ffmpeg"
	"lapse/internal/services/printer"
	"lapse/internal/session"
	"lapse/internal/video"
)

// connectionWarnThreshold is the consecutive-failure count at which the
// monitor stops logging individual connection errors.
const connectionWarnThreshold = 4

// Options wires the monitor's collaborators. Nil fields are built from
// the config; tests inject fakes.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger
	Printer    printer.Client
	Camera     camera.Capturer
	Assembler  *video.Assembler
	Uploader   connect.Uploader
	Notifier   notifications.Service
	Mailer     *report.Mailer
	History    *history.Store
}

// Monitor polls the printer and records timelapse sessions.
type Monitor struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger

	printer   printer.Client
	camera    camera.Capturer
	assembler *video.Assembler
	uploader  connect.Uploader
	notifier  notifications.Service
	mailer    *report.Mailer
	store     *history.Store

	tracker   *session.Tracker
	scheduler *session.Scheduler

	// rebuildCamera marks the camera client as config-owned so hot
	// reloads can replace it. Injected fakes are never replaced.
	rebuildCamera    bool
	rebuildAssembler bool
	rebuildUploader  bool

	currentJob       *printer.Job
	connectionErrors int

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds a monitor from the provided options.
func New(opts Options) (*Monitor, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("monitor requires config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "monitor")

	m := &Monitor{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		logger:     logger,
		printer:    opts.Printer,
		camera:     opts.Camera,
		assembler:  opts.Assembler,
		uploader:   opts.Uploader,
		notifier:   opts.Notifier,
		mailer:     opts.Mailer,
		store:      opts.History,
		tracker:    session.NewTracker(),
		scheduler:  session.NewScheduler(time.Duration(cfg.Camera.CaptureInterval) * time.Second),
	}

	if m.printer == nil {
		client, err := printer.New(cfg)
		if err != nil {
			return nil, err
		}
		m.printer = client
	}
	if m.camera == nil {
		client, err := camera.New(cfg)
		if err != nil {
			return nil, err
		}
		m.camera = client
		m.rebuildCamera = true
	}
	if m.assembler == nil {
		encoder, err := ffmpeg.New(cfg)
		if err != nil {
			return nil, err
		}
		assembler, err := video.NewAssembler(encoder, cfg.Video.FPS, cfg.Video.BatchSize, logger)
		if err != nil {
			return nil, err
		}
		m.assembler = assembler
		m.rebuildAssembler = true
	}
	if m.uploader == nil {
		m.uploader = connect.New(cfg)
		m.rebuildUploader = true
	}
	if m.notifier == nil {
		m.notifier = notifications.NewService(cfg)
	}
	if m.mailer == nil {
		m.mailer = report.NewMailer(cfg, logger)
	}
	return m, nil
}

// Start launches the polling loop.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("monitor already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.ctx = runCtx
	m.cancel = cancel
	m.running = true

	m.logger.Info("monitor starting",
		logging.String("printer", m.cfg.Printer.Host),
		logging.String("prints_dir", m.cfg.Paths.PrintsDir),
		logging.Int("poll_interval_seconds", m.cfg.Printer.PollInterval),
		logging.Int("capture_interval_seconds", m.cfg.Camera.CaptureInterval))

	m.wg.Add(1)
	go m.loop()
	return nil
}

// Stop halts the loop. An in-flight session is flushed: whatever frames
// exist are assembled so an interrupted daemon still leaves a video
// behind.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	if s := m.tracker.Active(); s != nil {
		m.logger.Info("saving in-flight timelapse before shutdown")
		// The run context is gone; give the flush its own deadline.
		flushCtx, flushCancel := context.WithTimeout(context.Background(), m.flushTimeout(s.FrameCount()))
		defer flushCancel()
		m.handlePrintEnd(flushCtx)
	}
}

// flushTimeout sizes the shutdown deadline to the work left: one encode
// per batch segment plus the final concat, each bounded by the encode
// timeout.
func (m *Monitor) flushTimeout(frames int) time.Duration {
	batch := m.cfg.Video.BatchSize
	if batch <= 0 {
		batch = 1
	}
	segments := (frames + batch - 1) / batch
	if segments < 1 {
		segments = 1
	}
	perEncode := time.Duration(m.cfg.Video.EncodeTimeout) * time.Second
	return perEncode*time.Duration(segments+1) + time.Minute
}

func (m *Monitor) loop() {
	defer m.wg.Done()

	m.poll()

	ticker := time.NewTicker(m.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.poll()
			ticker.Reset(m.pollInterval())
		}
	}
}

func (m *Monitor) pollInterval() time.Duration {
	interval := time.Duration(m.cfg.Printer.PollInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return interval
}

func (m *Monitor) poll() {
	ctx := m.ctx
	if ctx == nil {
		return
	}

	m.reloadConfig()

	// An unreachable printer counts as not printing. Ending the session
	// on ambiguous input beats capturing frames nobody asked for; a
	// partial timelapse survives, and a reconnect mid-print simply
	// starts a fresh session.
	status, err := m.printer.Status(ctx)
	if err != nil {
		m.noteConnectionError(err)
		status = nil
	} else {
		m.noteConnectionRestored()
	}

	transition := m.tracker.Observe(status.Printing())
	switch transition {
	case session.Started:
		m.handlePrintStart(ctx)
	case session.Ended:
		m.handlePrintEnd(ctx)
	}

	if status.Printing() && m.tracker.Active() != nil {
		now := time.Now()
		if m.scheduler.Due(now) {
			m.captureFrame(ctx, now)
		}
	}
}

// reloadConfig re-reads the config file and applies runtime-safe
// changes. Printer host, credentials, and paths stay fixed until
// restart.
func (m *Monitor) reloadConfig() {
	if m.configPath == "" {
		return
	}
	updated, _, _, err := config.Load(m.configPath)
	if err != nil {
		m.logger.Warn("config reload failed", logging.Error(err))
		return
	}
	changes := m.cfg.ApplyRuntime(updated)
	if len(changes) == 0 {
		return
	}
	m.logger.Info("configuration reloaded with changes")
	for _, change := range changes {
		m.logger.Info("config change", logging.String("change", change))
	}
	m.scheduler.SetInterval(time.Duration(m.cfg.Camera.CaptureInterval) * time.Second)
	m.rebuildClients()
}

func (m *Monitor) rebuildClients() {
	if m.rebuildCamera {
		if client, err := camera.New(m.cfg); err != nil {
			m.logger.Warn("camera settings rejected, keeping previous", logging.Error(err))
		} else {
			m.camera = client
		}
	}
	if m.rebuildAssembler {
		encoder, err := ffmpeg.New(m.cfg)
		if err != nil {
			m.logger.Warn("encoder settings rejected, keeping previous", logging.Error(err))
			return
		}
		assembler, err := video.NewAssembler(encoder, m.cfg.Video.FPS, m.cfg.Video.BatchSize, m.logger)
		if err != nil {
			m.logger.Warn("video settings rejected, keeping previous", logging.Error(err))
			return
		}
		m.assembler = assembler
	}
	if m.rebuildUploader {
		// Rotation is baked into the upload body, so a rotation change
		// has to reach the uploader too.
		m.uploader = connect.New(m.cfg)
	}
}

func (m *Monitor) noteConnectionError(err error) {
	m.connectionErrors++
	switch {
	case m.connectionErrors < connectionWarnThreshold:
		m.logger.Debug("printer connection issue, will retry",
			logging.Int("consecutive", m.connectionErrors),
			logging.Error(err))
	case m.connectionErrors == connectionWarnThreshold:
		m.logger.Warn("printer connection unstable, will continue retrying silently",
			logging.Error(err))
	}
}

func (m *Monitor) noteConnectionRestored() {
	if m.connectionErrors >= connectionWarnThreshold {
		m.logger.Info("printer connection restored")
	}
	m.connectionErrors = 0
}

func (m *Monitor) handlePrintStart(ctx context.Context) {
	job, err := m.printer.Job(ctx)
	if err != nil {
		m.logger.Warn("job details unavailable", logging.Error(err))
		job = nil
	}
	m.currentJob = job

	rawName := job.Name()
	s, err := session.New(m.cfg.Paths.PrintsDir, rawName, time.Now())
	if err != nil {
		m.logger.Error("cannot start session", logging.Error(err))
		m.notifyError(ctx, err, "session start")
		return
	}
	m.tracker.Begin(s)
	m.scheduler.Reset()

	ctx = services.WithSessionID(ctx, s.ID)
	ctx = services.WithSessionName(ctx, s.Name)
	logger := logging.WithContext(ctx, m.logger)
	logger.Info("print started", logging.String("frames_dir", s.Dir))

	if err := deps.CheckDiskSpace(m.cfg.Paths.PrintsDir); err != nil {
		logger.Warn("disk space check failed", logging.Error(err))
		m.notifyError(ctx, err, "disk space")
	}
	if err := m.notifier.NotifyPrintStarted(ctx, s.Name); err != nil {
		logger.Warn("start notification failed", logging.Error(err))
	}
}

func (m *Monitor) captureFrame(ctx context.Context, now time.Time) {
	s := m.tracker.Active()
	if s == nil {
		return
	}

	ctx = services.WithSessionID(ctx, s.ID)
	ctx = services.WithSessionName(ctx, s.Name)
	logger := logging.WithContext(ctx, m.logger)

	framePath := s.NextFramePath()
	if err := m.camera.Capture(ctx, framePath); err != nil {
		logger.Error("frame capture failed",
			logging.String("frame", framePath),
			logging.Error(err))
		if services.IsFatal(err) {
			// Not going to self-heal between polls.
			m.notifyError(ctx, err, "camera configuration")
		}
		return
	}
	s.RecordFrame()
	m.scheduler.MarkCaptured(now)
	logger.Debug("frame captured",
		logging.String("frame", framePath),
		logging.Int("count", s.FrameCount()))

	if m.uploader.Enabled() {
		if err := m.uploader.Upload(ctx, framePath); err != nil {
			logger.Warn("snapshot upload failed", logging.Error(err))
		}
	}
}

func (m *Monitor) handlePrintEnd(ctx context.Context) {
	s := m.tracker.End()
	if s == nil {
		return
	}
	job := m.currentJob
	m.currentJob = nil

	ctx = services.WithSessionID(ctx, s.ID)
	ctx = services.WithSessionName(ctx, s.Name)
	logger := logging.WithContext(ctx, m.logger)

	endedAt := time.Now()
	duration := s.Duration(endedAt)
	record := &history.Record{
		ID:         s.ID,
		Name:       s.Name,
		RawName:    s.RawName,
		StartedAt:  s.StartedAt,
		EndedAt:    endedAt,
		Duration:   duration,
		FrameCount: s.FrameCount(),
	}

	if s.FrameCount() == 0 {
		logger.Warn("print ended but no frames were captured")
		record.Status = history.StatusNoFrames
		m.removeDir(s.Dir)
		m.recordHistory(ctx, record)
		if err := m.notifier.NotifyPrintEndedWithoutFrames(ctx, s.Name); err != nil {
			logger.Warn("notification failed", logging.Error(err))
		}
		return
	}

	logger.Info("print completed",
		logging.Int("frames", s.FrameCount()),
		logging.Duration("duration", duration))

	videoPath := s.VideoPath()
	if err := m.assembler.Assemble(ctx, s.Dir, videoPath); err != nil {
		logger.Error("video assembly failed",
			logging.String("frames_dir", s.Dir),
			logging.Error(err))
		record.Status = history.StatusFailed
		record.FramesPath = s.Dir
		record.Error = err.Error()
		m.recordHistory(ctx, record)
		m.notifyError(ctx, err, "video assembly")
		return
	}
	logger.Info("timelapse created", logging.String("video", videoPath))

	summary := &report.Summary{
		Name:            s.Name,
		RawName:         s.RawName,
		StartedAt:       s.StartedAt,
		EndedAt:         endedAt,
		Duration:        duration,
		FrameCount:      s.FrameCount(),
		CaptureInterval: time.Duration(m.cfg.Camera.CaptureInterval) * time.Second,
		VideoPath:       videoPath,
		Job:             job,
	}
	if err := report.WritePrintLog(s.LogPath(), summary); err != nil {
		logger.Error("print log failed", logging.Error(err))
	}
	if err := m.mailer.Send(ctx, summary); err != nil {
		logger.Error("completion email failed", logging.Error(err))
	}
	if err := m.notifier.NotifyTimelapseReady(ctx, s.Name, videoPath, s.FrameCount(), duration); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}

	// Frames are only removed once the video exists.
	m.removeDir(s.Dir)

	record.Status = history.StatusCompleted
	record.VideoPath = videoPath
	m.recordHistory(ctx, record)
}

func (m *Monitor) recordHistory(ctx context.Context, record *history.Record) {
	if m.store == nil {
		return
	}
	if err := m.store.Add(ctx, record); err != nil {
		m.logger.Error("history record failed", logging.Error(err))
	}
}

func (m *Monitor) removeDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		m.logger.Warn("cleanup failed",
			logging.String("dir", dir),
			logging.Error(err))
	}
}

func (m *Monitor) notifyError(ctx context.Context, err error, label string) {
	if notifyErr := m.notifier.NotifyError(ctx, err, label); notifyErr != nil {
		m.logger.Warn("error notification failed", logging.Error(notifyErr))
	}
}
