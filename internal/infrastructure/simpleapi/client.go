// Package simpleapi implementa el cliente del servicio externo de firma y
// timbre de DTEs (SimpleAPI). El servicio firma con el certificado del emisor
// y timbra con el CAF; este cliente solo transporta y clasifica errores.
package simpleapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appdte "github.com/dryanez/autodirectocrm/internal/application/dte"
	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/pkg/logger"
	"github.com/dryanez/autodirectocrm/pkg/retry"
)

const (
	documentEndpoint = "/api/v1/dte/documento"
	trackIDHeader    = "X-Track-Id"

	// maxResponseBytes acota la lectura del XML firmado (un DTE pesa KBs).
	maxResponseBytes = 4 << 20
)

// errRemoteRateLimited marca un 429 del servidor dentro del ciclo de
// reintentos; hacia afuera se traduce a domain.ErrRateLimitExceeded.
var errRemoteRateLimited = errors.New("respuesta 429 del servicio de firma")

var _ appdte.Submitter = (*Client)(nil)

// Config parámetros del cliente. Separada de config.SigningConfig para que
// los tests la armen sin archivos en disco; LoadConfig hace el puente.
type Config struct {
	BaseURL       string
	APIKey        string
	CertB64       string // certificado .pfx en base64
	CertPassword  string
	CAFXML        map[entity.DocumentType]string
	RatePerSecond int
	RatePerMinute int
	MaxAttempts   int
	RetryBackoff  time.Duration
	Timeout       time.Duration
}

// Client cliente HTTP del servicio de firma con cupo local de salida.
type Client struct {
	httpClient *http.Client
	cfg        Config
	limiter    *dualLimiter
	log        *logger.Logger
}

// NewClient construye el cliente. El cupo local (3 req/s, 40 req/min por
// defecto) se aplica antes de cada request para no gastar la cuota remota.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 3
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 40
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		limiter:    newDualLimiter(cfg.RatePerSecond, cfg.RatePerMinute),
		log:        log.Component("simpleapi"),
	}
}

// Submit envía el documento validado y devuelve el XML firmado con su track
// ID. 429 y fallas de red se reintentan hasta agotar MaxAttempts; 401 y 400
// cortan de inmediato (credenciales y rechazos no mejoran reintentando).
func (c *Client) Submit(ctx context.Context, doc *entity.Document) (*appdte.SignedResult, error) {
	body := requestBody{
		Documento:           encodeDocumento(doc),
		Certificado:         c.cfg.CertB64,
		CertificadoPassword: c.cfg.CertPassword,
		CAF:                 c.cfg.CAFXML[doc.Header.DocType],
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("codificar request: %w", err)
	}

	policy := retry.Policy{
		MaxAttempts: c.cfg.MaxAttempts,
		Backoff:     c.cfg.RetryBackoff,
		Retryable: func(err error) bool {
			return errors.Is(err, errRemoteRateLimited) || errors.Is(err, domain.ErrTransport)
		},
	}

	var result *appdte.SignedResult
	attempt := 0
	err = policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		res, attemptErr := c.attempt(ctx, payload, doc, attempt)
		if attemptErr != nil {
			return attemptErr
		}
		result = res
		return nil
	})
	if err != nil {
		if errors.Is(err, errRemoteRateLimited) {
			return nil, fmt.Errorf("%w: tras %d intentos", domain.ErrRateLimitExceeded, attempt)
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) attempt(ctx context.Context, payload []byte, doc *entity.Document, attempt int) (*appdte.SignedResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+documentEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("armar request: %w", err)
	}
	req.Header.Set("Authorization", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Debug().Int("tipo", int(doc.Header.DocType)).Int64("folio", doc.Header.Folio).
		Int("attempt", attempt).Msg("enviando DTE al servicio de firma")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leyendo respuesta: %v", domain.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return &appdte.SignedResult{
			TrackID:       resp.Header.Get(trackIDHeader),
			SignedPayload: string(raw),
		}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: revise SIMPLEAPI_KEY y la contraseña del certificado", domain.ErrAuthentication)
	case resp.StatusCode == http.StatusTooManyRequests:
		c.log.Warn().Int("attempt", attempt).Msg("cuota remota excedida (429)")
		return nil, errRemoteRateLimited
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &domain.DocumentRejectedError{
			RemoteCode: resp.StatusCode,
			Message:    rejectionMessage(raw),
		}
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d del servicio de firma", domain.ErrTransport, resp.StatusCode)
	default:
		return nil, fmt.Errorf("respuesta inesperada del servicio de firma: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(raw)))
	}
}

// rejectionMessage extrae el mensaje de un rechazo. El servicio responde JSON
// {"error": "..."} o texto plano según el tipo de falla.
func rejectionMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}
