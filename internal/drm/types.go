package drm

import "fmt"

// System — идентификатор DRM-системы вендора.
type System string

const (
	// SystemWidevine — Google Widevine.
	SystemWidevine System = "widevine"
	// SystemPlayReady — Microsoft PlayReady.
	SystemPlayReady System = "playready"
	// SystemFairPlay — Apple FairPlay.
	SystemFairPlay System = "fairplay"
)

// ParseSystem разбирает строковый тег DRM-системы из URL запроса.
func ParseSystem(s string) (System, error) {
	const op = "drm.ParseSystem"
	switch System(s) {
	case SystemWidevine, SystemPlayReady, SystemFairPlay:
		return System(s), nil
	default:
		return "", fmt.Errorf("%s: %w: %q", op, ErrUnknownSystem, s)
	}
}
