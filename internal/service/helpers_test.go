package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sge-estagio-api/internal/models"
	"github.com/noah-isme/sge-estagio-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// memoryEstagioRepo is an in-memory EstagioRepository used by service tests.
type memoryEstagioRepo struct {
	mu       sync.Mutex
	estagios map[string]models.Estagio
	logs     []models.NotificacaoLog
	pingErr  error
}

func newMemoryEstagioRepo() *memoryEstagioRepo {
	return &memoryEstagioRepo{estagios: make(map[string]models.Estagio)}
}

func (r *memoryEstagioRepo) CreateWithGraph(_ context.Context, estagio *models.Estagio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if estagio.ID == "" {
		estagio.ID = uuid.NewString()
	}
	for i := range estagio.Locais {
		if estagio.Locais[i].ID == "" {
			estagio.Locais[i].ID = uuid.NewString()
		}
		estagio.Locais[i].EstagioID = estagio.ID
	}
	if estagio.Confirmacao != nil {
		if estagio.Confirmacao.ID == "" {
			estagio.Confirmacao.ID = uuid.NewString()
		}
		estagio.Confirmacao.EstagioID = estagio.ID
	}

	r.estagios[estagio.ID] = *estagio
	return nil
}

func (r *memoryEstagioRepo) GetByID(_ context.Context, id string) (models.Estagio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	estagio, ok := r.estagios[id]
	if !ok {
		return models.Estagio{}, gorm.ErrRecordNotFound
	}
	return estagio, nil
}

func (r *memoryEstagioRepo) ListByCurso(_ context.Context, cursoID string, filter repository.EstagioFilter) ([]models.Estagio, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []models.Estagio
	for _, estagio := range r.estagios {
		if estagio.CursoID != cursoID {
			continue
		}
		if filter.TurmaID != "" && estagio.TurmaID != filter.TurmaID {
			continue
		}
		if filter.Status != "" && estagio.Status != filter.Status {
			continue
		}
		if filter.Busca != "" && !strings.Contains(strings.ToLower(estagio.Nome), strings.ToLower(filter.Busca)) {
			continue
		}
		matches = append(matches, estagio)
	}
	return matches, int64(len(matches)), nil
}

func (r *memoryEstagioRepo) ListByInscricao(_ context.Context, inscricaoID string) ([]models.Estagio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []models.Estagio
	for _, estagio := range r.estagios {
		if estagio.InscricaoID == inscricaoID {
			matches = append(matches, estagio)
		}
	}
	return matches, nil
}

func (r *memoryEstagioRepo) Update(_ context.Context, estagio *models.Estagio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.estagios[estagio.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := r.estagios[estagio.ID]
	locais := stored.Locais
	confirmacao := stored.Confirmacao

	updated := *estagio
	updated.Locais = locais
	updated.Confirmacao = confirmacao
	r.estagios[estagio.ID] = updated
	return nil
}

func (r *memoryEstagioRepo) ReplaceLocais(_ context.Context, estagioID string, locais []models.EstagioLocal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	estagio, ok := r.estagios[estagioID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range locais {
		if locais[i].ID == "" {
			locais[i].ID = uuid.NewString()
		}
		locais[i].EstagioID = estagioID
	}
	estagio.Locais = locais
	r.estagios[estagioID] = estagio
	return nil
}

func (r *memoryEstagioRepo) FindExpiring(_ context.Context, now time.Time, horizon, dedup time.Duration) ([]models.Estagio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := now.Add(-dedup)
	var matches []models.Estagio
	for _, estagio := range r.estagios {
		if estagio.Status != models.StatusPendente && estagio.Status != models.StatusEmAndamento {
			continue
		}
		if estagio.DataFim.Before(now) || estagio.DataFim.After(now.Add(horizon)) {
			continue
		}
		if estagio.UltimoLembreteEm != nil && !estagio.UltimoLembreteEm.Before(cutoff) {
			continue
		}
		matches = append(matches, estagio)
	}
	return matches, nil
}

func (r *memoryEstagioRepo) MarkLembrete(_ context.Context, estagioID string, at time.Time, entry *models.NotificacaoLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	estagio, ok := r.estagios[estagioID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stamp := at
	estagio.UltimoLembreteEm = &stamp
	r.estagios[estagioID] = estagio

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memoryEstagioRepo) Ping(context.Context) error {
	return r.pingErr
}

// memoryConfirmacaoRepo shares storage with the estagio repo so confirmed
// state is visible through both interfaces, mirroring the shared database.
type memoryConfirmacaoRepo struct {
	estagios *memoryEstagioRepo
}

func (r *memoryConfirmacaoRepo) GetByToken(_ context.Context, token string) (models.EstagioConfirmacao, error) {
	r.estagios.mu.Lock()
	defer r.estagios.mu.Unlock()

	for _, estagio := range r.estagios.estagios {
		if estagio.Confirmacao != nil && estagio.Confirmacao.Token == token {
			return *estagio.Confirmacao, nil
		}
	}
	return models.EstagioConfirmacao{}, gorm.ErrRecordNotFound
}

func (r *memoryConfirmacaoRepo) GetByEstagio(_ context.Context, estagioID string) (models.EstagioConfirmacao, error) {
	r.estagios.mu.Lock()
	defer r.estagios.mu.Unlock()

	estagio, ok := r.estagios.estagios[estagioID]
	if !ok || estagio.Confirmacao == nil {
		return models.EstagioConfirmacao{}, gorm.ErrRecordNotFound
	}
	return *estagio.Confirmacao, nil
}

func (r *memoryConfirmacaoRepo) Confirm(_ context.Context, confirmacao *models.EstagioConfirmacao, estagio *models.Estagio) error {
	r.estagios.mu.Lock()
	defer r.estagios.mu.Unlock()

	stored, ok := r.estagios.estagios[estagio.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *estagio
	updated.Locais = stored.Locais
	record := *confirmacao
	updated.Confirmacao = &record
	r.estagios.estagios[estagio.ID] = updated
	return nil
}

type memoryNotificacaoRepo struct {
	mu      sync.Mutex
	entries []models.NotificacaoLog
}

func (r *memoryNotificacaoRepo) Append(_ context.Context, entry *models.NotificacaoLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryNotificacaoRepo) ListByEstagio(_ context.Context, estagioID string) ([]models.NotificacaoLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []models.NotificacaoLog
	for _, entry := range r.entries {
		if entry.EstagioID == estagioID {
			matches = append(matches, entry)
		}
	}
	return matches, nil
}

type memoryCadastroRepo struct {
	cursos     map[string]models.Curso
	turmas     map[string]models.Turma
	inscricoes map[string]models.Inscricao
	usuarios   map[uint]models.Usuario
}

func newMemoryCadastroRepo() *memoryCadastroRepo {
	return &memoryCadastroRepo{
		cursos:     make(map[string]models.Curso),
		turmas:     make(map[string]models.Turma),
		inscricoes: make(map[string]models.Inscricao),
		usuarios:   make(map[uint]models.Usuario),
	}
}

func (r *memoryCadastroRepo) GetCurso(_ context.Context, id string) (models.Curso, error) {
	curso, ok := r.cursos[id]
	if !ok {
		return models.Curso{}, gorm.ErrRecordNotFound
	}
	return curso, nil
}

func (r *memoryCadastroRepo) GetTurma(_ context.Context, cursoID, id string) (models.Turma, error) {
	turma, ok := r.turmas[id]
	if !ok || (cursoID != "" && turma.CursoID != cursoID) {
		return models.Turma{}, gorm.ErrRecordNotFound
	}
	return turma, nil
}

func (r *memoryCadastroRepo) GetInscricao(_ context.Context, turmaID, id string) (models.Inscricao, error) {
	inscricao, ok := r.inscricoes[id]
	if !ok || (turmaID != "" && inscricao.TurmaID != turmaID) {
		return models.Inscricao{}, gorm.ErrRecordNotFound
	}
	return inscricao, nil
}

func (r *memoryCadastroRepo) GetUsuario(_ context.Context, id uint) (models.Usuario, error) {
	usuario, ok := r.usuarios[id]
	if !ok {
		return models.Usuario{}, gorm.ErrRecordNotFound
	}
	return usuario, nil
}

// fakeDispatcher records dispatched notifications without sending anything.
type fakeDispatcher struct {
	mu          sync.Mutex
	convocacoes []ConvocacaoInput
	lembretes   []LembreteInput
	agora       time.Time
}

func (d *fakeDispatcher) EnviarConvocacao(_ context.Context, input ConvocacaoInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.convocacoes = append(d.convocacoes, input)
}

func (d *fakeDispatcher) EnviarLembrete(_ context.Context, input LembreteInput) models.NotificacaoLog {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lembretes = append(d.lembretes, input)

	enviado := d.agora
	if enviado.IsZero() {
		enviado = time.Now()
	}
	return models.NotificacaoLog{
		EstagioID:    input.Estagio.ID,
		Tipo:         models.NotificacaoFimProximo,
		Canal:        "email",
		Destinatario: input.Destinatario,
		EnviadoEm:    enviado,
	}
}
