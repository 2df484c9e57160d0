// Package scheduler owns the recurring background jobs of the service. Jobs
// expose their tick as a synchronous method so tests can drive them without a
// timer.
package scheduler

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sge-estagio-api/internal/models"
	"github.com/noah-isme/sge-estagio-api/internal/observability"
	"github.com/noah-isme/sge-estagio-api/internal/repository"
	"github.com/noah-isme/sge-estagio-api/internal/service"
)

const (
	watcherLeaseKey = "sge:estagio:watcher:lease"
	watcherLeaseTTL = 5 * time.Minute
)

// ExpirationWatcher periodically scans for internships approaching their end
// date and dispatches reminder emails to the responsible party. It runs on a
// single cron-driven timer decoupled from request traffic.
type ExpirationWatcher struct {
	estagios   repository.EstagioRepository
	cadastro   repository.CadastroRepository
	dispatcher service.NotificacaoService
	redis      *redis.Client
	cronExpr   string
	horizon    time.Duration
	dedup      time.Duration
	cron       *cron.Cron
	nodeID     string
	logger     zerolog.Logger
	now        func() time.Time
}

// NewExpirationWatcher constructs the watcher. The redis client is optional:
// when present it is used as a best-effort cross-process lease so horizontally
// scaled deployments do not double-send inside one tick window.
func NewExpirationWatcher(
	estagios repository.EstagioRepository,
	cadastro repository.CadastroRepository,
	dispatcher service.NotificacaoService,
	redisClient *redis.Client,
	cronExpr string,
	horizon time.Duration,
	dedup time.Duration,
	logger zerolog.Logger,
) *ExpirationWatcher {
	return &ExpirationWatcher{
		estagios:   estagios,
		cadastro:   cadastro,
		dispatcher: dispatcher,
		redis:      redisClient,
		cronExpr:   cronExpr,
		horizon:    horizon,
		dedup:      dedup,
		nodeID:     uuid.NewString(),
		logger:     logger.With().Str("component", "expiration_watcher").Logger(),
		now:        time.Now,
	}
}

// Start registers the tick on the cron schedule and launches the timer.
func (w *ExpirationWatcher) Start() error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.cronExpr, func() {
		w.RunOnce(context.Background())
	}); err != nil {
		return err
	}

	w.cron.Start()
	w.logger.Info().Str("cron", w.cronExpr).Dur("horizon", w.horizon).Msg("expiration watcher started")

	return nil
}

// Stop halts the timer. A tick already in flight runs to completion.
func (w *ExpirationWatcher) Stop() {
	if w.cron != nil {
		w.cron.Stop()
	}
	w.logger.Info().Msg("expiration watcher stopped")
}

// RunOnce performs a single synchronous tick. Failures never propagate; the
// timer always proceeds to its next scheduled run.
func (w *ExpirationWatcher) RunOnce(ctx context.Context) {
	if !w.acquireLease(ctx) {
		w.logger.Debug().Msg("watcher lease held by another instance, skipping tick")
		observability.WatcherTicks().WithLabelValues("lease_held").Inc()
		return
	}
	defer w.releaseLease(ctx)

	// Fail-soft liveness pre-check: an unreachable persistence layer skips
	// the whole tick without writes or sends.
	if err := w.estagios.Ping(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("persistence layer unreachable, skipping watcher tick")
		observability.WatcherTicks().WithLabelValues("db_unreachable").Inc()
		return
	}

	agora := w.now()
	expirando, err := w.estagios.FindExpiring(ctx, agora, w.horizon, w.dedup)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to select expiring estagios")
		observability.WatcherTicks().WithLabelValues("error").Inc()
		return
	}

	for _, estagio := range expirando {
		w.processar(ctx, estagio, agora)
	}

	observability.WatcherTicks().WithLabelValues("ok").Inc()
	w.logger.Info().Int("matches", len(expirando)).Msg("watcher tick completed")
}

func (w *ExpirationWatcher) processar(ctx context.Context, estagio models.Estagio, agora time.Time) {
	if estagio.Status.IsTerminal() {
		return
	}
	if estagio.CriadoPor == nil {
		w.logger.Debug().Str("estagio_id", estagio.ID).Msg("no responsible party on record, skipping reminder")
		return
	}

	responsavel, err := w.cadastro.GetUsuario(ctx, *estagio.CriadoPor)
	if err != nil {
		w.logger.Debug().Err(err).
			Str("estagio_id", estagio.ID).
			Uint("usuario_id", *estagio.CriadoPor).
			Msg("responsible party not resolvable, skipping reminder")
		return
	}

	diasRestantes := int(math.Ceil(estagio.DataFim.Sub(agora).Hours() / 24))
	if diasRestantes < 0 {
		diasRestantes = 0
	}

	entry := w.dispatcher.EnviarLembrete(ctx, service.LembreteInput{
		Estagio:         estagio,
		ResponsavelNome: responsavel.Nome,
		Destinatario:    responsavel.Email,
		DiasRestantes:   diasRestantes,
	})

	// Stamp and log in one transaction so the dedup window holds even if a
	// second tick overlaps.
	if err := w.estagios.MarkLembrete(ctx, estagio.ID, agora, &entry); err != nil {
		w.logger.Error().Err(err).Str("estagio_id", estagio.ID).Msg("failed to stamp reminder")
		return
	}

	observability.WatcherReminders().Inc()
}

func (w *ExpirationWatcher) acquireLease(ctx context.Context) bool {
	if w.redis == nil {
		return true
	}

	acquired, err := w.redis.SetNX(ctx, watcherLeaseKey, w.nodeID, watcherLeaseTTL).Result()
	if err != nil {
		// A broken lease store must not stall reminders on a
		// single-instance deployment.
		w.logger.Warn().Err(err).Msg("watcher lease check failed, proceeding without lease")
		return true
	}

	return acquired
}

func (w *ExpirationWatcher) releaseLease(ctx context.Context) {
	if w.redis == nil {
		return
	}

	held, err := w.redis.Get(ctx, watcherLeaseKey).Result()
	if err != nil || held != w.nodeID {
		return
	}

	if err := w.redis.Del(ctx, watcherLeaseKey).Err(); err != nil {
		w.logger.Warn().Err(err).Msg("failed to release watcher lease")
	}
}
