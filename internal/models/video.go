package models

// Video описывает метаданные защищённого видео из каталога.
//
// StreamURL указывает на зашифрованный манифест; сам контент шлюз
// не раздаёт и не расшифровывает.
type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"` // Длительность в секундах
	ThumbnailURL string `json:"thumbnail"`
	StreamURL    string `json:"stream_url"`
	StreamType   string `json:"type"`         // MIME манифеста, например application/dash+xml
	ContentTier  string `json:"content_tier"` // Минимальный уровень доступа: basic, premium или drm
}

// DRMSystemInfo — адреса лицензионных конечных точек для одной DRM-системы.
type DRMSystemInfo struct {
	LicenseURL     string `json:"licenseUrl"`
	CertificateURL string `json:"certificateUrl,omitempty"`
}

// VideoWithDRM — метаданные видео, дополненные адресами лицензионных
// конечных точек шлюза для каждой поддерживаемой DRM-системы.
type VideoWithDRM struct {
	Video
	Encrypted  bool                     `json:"encrypted"`
	DRMSystems map[string]DRMSystemInfo `json:"drmSystems"`
}
