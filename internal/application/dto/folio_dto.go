package dto

// UploadCAFRequest entrada para registrar un rango de folios autorizado.
type UploadCAFRequest struct {
	TipoDTE     int    `json:"tipo_dte" validate:"required"`
	Environment string `json:"environment" validate:"required"`
	CAFXML      string `json:"caf_xml" validate:"required"`
}

// FolioPoolResponse estado de un rango de folios.
type FolioPoolResponse struct {
	TipoDTE       int    `json:"tipo_dte"`
	Environment   string `json:"environment"`
	RangeStart    int64  `json:"range_start"`
	RangeEnd      int64  `json:"range_end"`
	NextAvailable int64  `json:"next_available"`
	Remaining     int64  `json:"remaining"`
	Exhausted     bool   `json:"exhausted"`
}
