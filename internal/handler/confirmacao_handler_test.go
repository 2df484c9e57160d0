package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sge-estagio-api/internal/dto"
	"github.com/noah-isme/sge-estagio-api/internal/service"
)

type stubConfirmacaoService struct {
	confirmFn func(ctx context.Context, payload dto.ConfirmacaoRequest) (dto.EstagioResponse, error)
}

func (s *stubConfirmacaoService) Confirm(ctx context.Context, payload dto.ConfirmacaoRequest) (dto.EstagioResponse, error) {
	return s.confirmFn(ctx, payload)
}

func newConfirmacaoTestApp(svc service.ConfirmacaoService) *fiber.App {
	app := fiber.New()
	NewConfirmacaoHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/public"))
	return app
}

func TestConfirmacaoHandlerConfirm(t *testing.T) {
	token := strings.Repeat("ab", 32)

	var received dto.ConfirmacaoRequest
	svc := &stubConfirmacaoService{
		confirmFn: func(_ context.Context, payload dto.ConfirmacaoRequest) (dto.EstagioResponse, error) {
			received = payload
			return dto.EstagioResponse{ID: "e1", Status: "EM_ANDAMENTO"}, nil
		},
	}
	app := newConfirmacaoTestApp(svc)

	body, _ := json.Marshal(fiber.Map{"token": token, "navegador": "Firefox"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/estagios/confirmar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	require.Equal(t, token, received.Token)
	require.Equal(t, "Firefox", received.Navegador)
	// Transport-level audit data fills gaps left by the client.
	require.Equal(t, "Mozilla/5.0 (X11; Linux x86_64)", received.UserAgent)
	require.NotEmpty(t, received.IP)
}

func TestConfirmacaoHandlerInvalidToken(t *testing.T) {
	svc := &stubConfirmacaoService{
		confirmFn: func(context.Context, dto.ConfirmacaoRequest) (dto.EstagioResponse, error) {
			return dto.EstagioResponse{}, service.ErrConfirmacaoInvalida
		},
	}
	app := newConfirmacaoTestApp(svc)

	body, _ := json.Marshal(fiber.Map{"token": strings.Repeat("0", 64)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/estagios/confirmar", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "CONFIRMACAO_INVALIDA", decodeEnvelope(t, resp).Code)
}

func TestConfirmacaoHandlerMalformedBody(t *testing.T) {
	app := newConfirmacaoTestApp(&stubConfirmacaoService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/estagios/confirmar", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, resp).Code)
}
