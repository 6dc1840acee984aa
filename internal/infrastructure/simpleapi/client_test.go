package simpleapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dryanez/autodirectocrm/internal/domain"
	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/pkg/logger"
)

func testDocument() *entity.Document {
	return &entity.Document{
		ID:    "doc-1",
		CarID: "car-1",
		Header: entity.Header{
			DocType:   entity.DocTypeLiquidacionFactura,
			Folio:     500,
			IssueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Issuer: entity.Issuer{
				RUT:         "76000000-0",
				RazonSocial: "AutoDirecto SpA",
				Giro:        "Compraventa de Vehículos Usados",
				Direccion:   "Av. Las Condes 10000",
				Comuna:      "Las Condes",
				Ciudad:      "Santiago",
			},
			Receiver: entity.Receiver{
				RUT:         "12345678-5",
				RazonSocial: "Juan Pérez",
				Direccion:   "Sin dirección registrada",
				Comuna:      "Santiago",
				Ciudad:      "Santiago",
			},
		},
		Lines: []entity.Line{
			{Number: 1, Name: "Venta Toyota Corolla 2020", Quantity: decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(10_000_000), Amount: decimal.NewFromInt(10_000_000)},
			{Number: 2, Name: "Comisión consignación (10%)", Quantity: decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(-1_000_000), Amount: decimal.NewFromInt(-1_000_000)},
			{Number: 3, Name: "IVA sobre comisión (19%)", Quantity: decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(-190_000), Amount: decimal.NewFromInt(-190_000)},
		},
		Totals: entity.Totals{
			Net:   decimal.NewFromInt(8_810_000),
			Tax:   decimal.NewFromInt(190_000),
			Gross: decimal.NewFromInt(8_810_000),
		},
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		CertB64:       "cGZ4LWJ5dGVz",
		CertPassword:  "secreto",
		CAFXML:        map[entity.DocumentType]string{entity.DocTypeLiquidacionFactura: "<AUTORIZACION/>"},
		RatePerSecond: 1000, // sin throttling en tests
		RatePerMinute: 60000,
		MaxAttempts:   3,
		RetryBackoff:  time.Millisecond,
		Timeout:       2 * time.Second,
	}, logger.New(logger.Config{Env: "production", Level: "error"}))
}

func TestClient_EnvioExitoso(t *testing.T) {
	var got requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, documentEndpoint, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set(trackIDHeader, "TRK-777")
		w.Write([]byte("<DTE version=\"1.0\"/>"))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())
	require.NoError(t, err)

	assert.Equal(t, "TRK-777", result.TrackID)
	assert.Equal(t, `<DTE version="1.0"/>`, result.SignedPayload)

	// Cuerpo según el schema del SII.
	assert.Equal(t, 43, got.Documento.Encabezado.IdDoc.TipoDTE)
	assert.Equal(t, int64(500), got.Documento.Encabezado.IdDoc.Folio)
	assert.Equal(t, "2026-03-15", got.Documento.Encabezado.IdDoc.FchEmis)
	assert.Equal(t, 1, got.Documento.Encabezado.IdDoc.IndServicio)
	assert.Equal(t, "76000000-0", got.Documento.Encabezado.Emisor.RUTEmisor)
	assert.Equal(t, "12345678-5", got.Documento.Encabezado.Receptor.RUTRecep)
	assert.Equal(t, int64(8_810_000), got.Documento.Encabezado.Totales.MntNeto)
	assert.Equal(t, 19, got.Documento.Encabezado.Totales.TasaIVA)
	assert.Equal(t, int64(190_000), got.Documento.Encabezado.Totales.IVA)
	assert.Equal(t, int64(8_810_000), got.Documento.Encabezado.Totales.MntTotal)
	require.Len(t, got.Documento.Detalle, 3)
	assert.Equal(t, int64(-1_000_000), got.Documento.Detalle[1].MontoItem)
	assert.Equal(t, "cGZ4LWJ5dGVz", got.Certificado)
	assert.Equal(t, "secreto", got.CertificadoPassword)
	assert.Equal(t, "<AUTORIZACION/>", got.CAF)
}

func TestClient_RateLimitAgotaReintentos(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
	assert.Equal(t, int32(3), calls.Load(), "tres intentos en total ante 429")
}

func TestClient_RateLimitSeRecuperaEnElReintento(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set(trackIDHeader, "TRK-1")
		w.Write([]byte("<DTE/>"))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", result.TrackID)
}

func TestClient_AutenticacionNoSeReintenta(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Equal(t, int32(1), calls.Load(), "401 corta sin reintentos")
}

func TestClient_RechazoDelDocumento(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"RUT receptor inválido"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())

	var rejected *domain.DocumentRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusBadRequest, rejected.RemoteCode)
	assert.Equal(t, "RUT receptor inválido", rejected.Message)
	assert.Equal(t, int32(1), calls.Load(), "400 corta sin reintentos")
}

func TestClient_ErrorDeServidorSeReintentaYMapeaATransporte(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ServidorInalcanzable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // puerto cerrado

	_, err := newTestClient(srv.URL).Submit(context.Background(), testDocument())
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestClient_GuiaDespachoLlevaIndTraslado(t *testing.T) {
	doc := testDocument()
	doc.Header.DocType = entity.DocTypeGuiaDespacho
	doc.Header.IndTraslado = entity.IndTrasladoConsignacion
	doc.Lines = doc.Lines[:1]
	doc.Totals = entity.Totals{
		Net:   decimal.NewFromInt(10_000_000),
		Tax:   decimal.Zero,
		Gross: decimal.NewFromInt(10_000_000),
	}

	var got requestBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("<DTE/>"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Submit(context.Background(), doc)
	require.NoError(t, err)

	assert.Equal(t, 52, got.Documento.Encabezado.IdDoc.TipoDTE)
	assert.Equal(t, entity.IndTrasladoConsignacion, got.Documento.Encabezado.IdDoc.IndTraslado)
	assert.Zero(t, got.Documento.Encabezado.IdDoc.IndServicio)
	assert.Zero(t, got.Documento.Encabezado.Totales.TasaIVA, "la guía no declara IVA")
	assert.Zero(t, got.Documento.Encabezado.Totales.IVA)
}
