package simpleapi

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/dryanez/autodirectocrm/internal/domain/entity"
	"github.com/dryanez/autodirectocrm/pkg/config"
)

// LoadConfig arma la Config del cliente desde la configuración de la app:
// lee el certificado y los CAF desde disco y hace el precheck local del .pfx.
// Las rutas vacías se omiten (el sandbox acepta requests sin CAF).
func LoadConfig(cfg config.SigningConfig) (Config, error) {
	out := Config{
		BaseURL:       cfg.BaseURL,
		APIKey:        cfg.APIKey,
		CertPassword:  cfg.CertPassword,
		CAFXML:        make(map[entity.DocumentType]string),
		RatePerSecond: cfg.RatePerSecond,
		RatePerMinute: cfg.RatePerMinute,
		MaxAttempts:   cfg.MaxAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		Timeout:       cfg.RequestTimeout,
	}

	if cfg.CertPath != "" {
		raw, err := os.ReadFile(cfg.CertPath)
		if err != nil {
			return Config{}, fmt.Errorf("leer certificado %s: %w", cfg.CertPath, err)
		}
		if _, err := VerifyCertificate(raw, cfg.CertPassword, time.Now()); err != nil {
			return Config{}, err
		}
		out.CertB64 = base64.StdEncoding.EncodeToString(raw)
	}

	for docType, path := range map[entity.DocumentType]string{
		entity.DocTypeLiquidacionFactura: cfg.CAFPath43,
		entity.DocTypeGuiaDespacho:       cfg.CAFPath52,
	} {
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("leer CAF %s: %w", path, err)
		}
		out.CAFXML[docType] = string(raw)
	}

	return out, nil
}
